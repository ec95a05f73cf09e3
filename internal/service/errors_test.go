package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrUnauthenticated, CodeUnauthenticated},
		{fmt.Errorf("%w: empty content", ErrInvalidArgument), CodeInvalidArgument},
		{ErrNotFound, CodeNotFound},
		{errors.New("connection reset"), CodeStorage},
	}

	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
