package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestIsObjectNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "NoSuchKey typed error",
			err:  &types.NoSuchKey{},
			want: true,
		},
		{
			name: "NoSuchKey api error code",
			err:  &smithy.GenericAPIError{Code: "NoSuchKey"},
			want: true,
		},
		{
			name: "NotFound api error code",
			err:  &smithy.GenericAPIError{Code: "NotFound"},
			want: true,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("get object: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}),
			want: true,
		},
		{
			name: "other api error",
			err:  &smithy.GenericAPIError{Code: "AccessDenied"},
			want: false,
		},
		{
			name: "non-api error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isObjectNotFound(tt.err))
		})
	}
}
