package retry

import "context"

// DoWithResultTyped 在 Retryer.Do 之上提供带类型结果的重试调用。
//
// 用法:
//
//	resp, err := retry.DoWithResultTyped[*llm.Response](r, ctx, func() (*llm.Response, error) {
//	    return provider.Completion(ctx, req)
//	})
func DoWithResultTyped[T any](r Retryer, ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
