package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    ObjectRef
		wantErr bool
	}{
		{
			name: "minimal",
			raw:  `{"detail":{"requestParameters":{"bucketName":"b","key":"k"}}}`,
			want: ObjectRef{Bucket: "b", Key: "k"},
		},
		{
			name: "other content ignored",
			raw:  `{"time":"not-a-time","source":1,"detail":{"eventName":"PutObject","requestParameters":{"bucketName":"b","key":"a/b.txt","x-id":"PutObject"}}}`,
			want: ObjectRef{Bucket: "b", Key: "a/b.txt"},
		},
		{
			name: "non-string eventName",
			raw:  `{"detail":{"eventName":5,"requestParameters":{"bucketName":"b","key":"k"}}}`,
			want: ObjectRef{Bucket: "b", Key: "k"},
		},
		{
			name: "object eventSource",
			raw:  `{"detail":{"eventSource":{"x":1},"requestParameters":{"bucketName":"b","key":"k"}}}`,
			want: ObjectRef{Bucket: "b", Key: "k"},
		},
		{
			name: "non-string sibling in requestParameters",
			raw:  `{"detail":{"requestParameters":{"bucketName":"b","key":"k","versionId":[1,2]}}}`,
			want: ObjectRef{Bucket: "b", Key: "k"},
		},
		{name: "empty request parameters", raw: `{"detail":{"requestParameters":{}}}`, wantErr: true},
		{name: "missing bucket", raw: `{"detail":{"requestParameters":{"key":"k"}}}`, wantErr: true},
		{name: "missing key", raw: `{"detail":{"requestParameters":{"bucketName":"b"}}}`, wantErr: true},
		{name: "empty bucket", raw: `{"detail":{"requestParameters":{"bucketName":"","key":"k"}}}`, wantErr: true},
		{name: "empty key", raw: `{"detail":{"requestParameters":{"bucketName":"b","key":""}}}`, wantErr: true},
		{name: "no request parameters", raw: `{"detail":{}}`, wantErr: true},
		{name: "no detail", raw: `{}`, wantErr: true},
		{name: "null detail", raw: `{"detail":null}`, wantErr: true},
		{name: "detail not object", raw: `{"detail":"x"}`, wantErr: true},
		{name: "bucket not string", raw: `{"detail":{"requestParameters":{"bucketName":1,"key":"k"}}}`, wantErr: true},
		{name: "null event", raw: `null`, wantErr: true},
		{name: "array event", raw: `[]`, wantErr: true},
		{name: "not json", raw: `hello`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse([]byte(tc.raw))
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidEventFormat)
				assert.Equal(t, "Invalid event format", err.Error())
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*60*60))

	raw, err := New("my-bucket", "dir/obj.png", now)
	require.NoError(t, err)

	var ev events.CloudWatchEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "aws.s3", ev.Source)
	assert.Equal(t, "AWS API Call via CloudTrail", ev.DetailType)
	assert.NotEmpty(t, ev.ID)
	assert.True(t, now.Equal(ev.Time))

	ref, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, ObjectRef{Bucket: "my-bucket", Key: "dir/obj.png"}, ref)
}
