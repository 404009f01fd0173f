package cosv4

import (
	"errors"
	"testing"

	"github.com/dysodeng/cosfs"
	"github.com/dysodeng/cosfs/api"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		res     *api.Response
		want    cosfs.Result
		wantErr *api.Error
	}{
		{
			name:  "success with data",
			debug: false,
			res:   &api.Response{Code: 0, Data: map[string]any{"filesize": 10.0}},
			want:  cosfs.Result{OK: true, Data: cosfs.Metadata{"filesize": 10.0}},
		},
		{
			name:  "success without data",
			debug: true,
			res:   &api.Response{Code: 0},
			want:  cosfs.Result{OK: true},
		},
		{
			name:  "lenient failure",
			debug: false,
			res:   &api.Response{Code: api.CodeSameFileUploaded, Message: "exists"},
			want:  cosfs.Result{},
		},
		{
			name:    "strict failure",
			debug:   true,
			res:     &api.Response{Code: api.CodeSameFileUploaded, Message: "exists"},
			wantErr: &api.Error{Code: -4018, Message: "exists"},
		},
		{
			name:  "lenient not found",
			debug: false,
			res:   &api.Response{Code: api.CodeIndexNotExist, Message: "index not exist"},
			want:  cosfs.Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newNormalizer(tt.debug, nil).normalize(tt.res)
			if tt.wantErr != nil {
				var apiErr *api.Error
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantErr.Code, apiErr.Code)
				assert.Equal(t, tt.wantErr.Message, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePayload(t *testing.T) {
	r, err := newNormalizer(false, nil).normalize(&api.Response{Code: 0})
	require.NoError(t, err)
	assert.Equal(t, true, r.Payload())

	r, err = newNormalizer(false, nil).normalize(&api.Response{Code: 0, Data: map[string]any{"ctime": 1.0}})
	require.NoError(t, err)
	assert.Equal(t, cosfs.Metadata{"ctime": 1.0}, r.Payload())
}

func TestProperty_Normalize(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	failureCode := gen.IntRange(-5000, 5000).SuchThat(func(c int) bool { return c != 0 })

	properties.Property("code 0 with data returns the data unchanged in both modes", prop.ForAll(
		func(debug bool, key, value string) bool {
			data := map[string]any{key: value}
			r, err := newNormalizer(debug, nil).normalize(&api.Response{Code: 0, Data: data})
			return err == nil && r.OK && len(r.Data) == 1 && r.Data[key] == value
		},
		gen.Bool(),
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.Property("code 0 without data returns OK with no data", prop.ForAll(
		func(debug bool, message string) bool {
			r, err := newNormalizer(debug, nil).normalize(&api.Response{Code: 0, Message: message})
			return err == nil && r.OK && r.Data == nil
		},
		gen.Bool(),
		gen.AnyString(),
	))

	properties.Property("strict failure carries code and message", prop.ForAll(
		func(code int, message string) bool {
			_, err := newNormalizer(true, nil).normalize(&api.Response{Code: code, Message: message})
			var apiErr *api.Error
			return errors.As(err, &apiErr) && apiErr.Code == code && apiErr.Message == message
		},
		failureCode,
		gen.AnyString(),
	))

	properties.Property("lenient failure is OK false without error", prop.ForAll(
		func(code int, message string) bool {
			r, err := newNormalizer(false, nil).normalize(&api.Response{Code: code, Message: message})
			return err == nil && !r.OK && r.Data == nil
		},
		failureCode,
		gen.AnyString(),
	))

	properties.Property("normalize is idempotent", prop.ForAll(
		func(debug bool, code int, message string) bool {
			res := &api.Response{Code: code, Message: message, Data: map[string]any{"k": message}}
			n := newNormalizer(debug, nil)
			r1, err1 := n.normalize(res)
			r2, err2 := n.normalize(res)
			if (err1 == nil) != (err2 == nil) || r1.OK != r2.OK || len(r1.Data) != len(r2.Data) {
				return false
			}
			return err1 == nil || err1.Error() == err2.Error()
		},
		gen.Bool(),
		gen.IntRange(-5000, 5000),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
