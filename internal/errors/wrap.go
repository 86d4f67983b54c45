package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
//
// The wrapped error preserves the original error chain, enabling
// errors.Is() checks to continue working:
//
//	if err := history.Load(ctx); err != nil {
//	    return errors.Wrap(err, "failed to load history")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
//
//	return errors.Wrapf(err, "failed to read %s", path)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Join categorizes cause under one or more sentinels while keeping both in the chain.
// The result matches errors.Is for every sentinel and for cause.
//
//	return errors.Join(ctx.Err(), errors.ErrNetwork, errors.ErrRequestTimeout)
func Join(cause error, sentinels ...error) error {
	if cause == nil {
		return nil
	}
	format := ""
	args := make([]any, 0, len(sentinels)+1)
	for _, s := range sentinels {
		format += "%w: "
		args = append(args, s)
	}
	args = append(args, cause)
	return fmt.Errorf(format+"%w", args...)
}
