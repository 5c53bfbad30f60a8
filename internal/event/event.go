// Package event reads the storage object reference out of an EventBridge
// notification for an S3 API call.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// The text is returned verbatim in the error response body.
var ErrInvalidEventFormat = errors.New("Invalid event format")

type ObjectRef struct {
	Bucket string
	Key    string
}

type requestParameters struct {
	BucketName string `json:"bucketName"`
	Key        string `json:"key"`
}

// detail is the read side: the only fields Parse looks at.
type detail struct {
	RequestParameters requestParameters `json:"requestParameters"`
}

// apiCallDetail is what New writes; its extra fields are never read back.
type apiCallDetail struct {
	EventSource       string            `json:"eventSource"`
	EventName         string            `json:"eventName"`
	RequestParameters requestParameters `json:"requestParameters"`
}

// Only detail is decoded so unrelated envelope fields can never fail the parse.
type envelope struct {
	Detail json.RawMessage `json:"detail"`
}

// Parse extracts detail.requestParameters.{bucketName,key}.
// Anything that does not yield two non-empty strings is ErrInvalidEventFormat.
func Parse(raw []byte) (ObjectRef, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ObjectRef{}, ErrInvalidEventFormat
	}
	if len(env.Detail) == 0 {
		return ObjectRef{}, ErrInvalidEventFormat
	}

	var d detail
	if err := json.Unmarshal(env.Detail, &d); err != nil {
		return ObjectRef{}, ErrInvalidEventFormat
	}

	ref := ObjectRef{
		Bucket: d.RequestParameters.BucketName,
		Key:    d.RequestParameters.Key,
	}
	if ref.Bucket == "" || ref.Key == "" {
		return ObjectRef{}, ErrInvalidEventFormat
	}
	return ref, nil
}

// New builds the notification EventBridge emits for a CloudTrail-recorded PutObject.
func New(bucket, key string, now time.Time) ([]byte, error) {
	d, err := json.Marshal(apiCallDetail{
		EventSource: "s3.amazonaws.com",
		EventName:   "PutObject",
		RequestParameters: requestParameters{
			BucketName: bucket,
			Key:        key,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	ev := events.CloudWatchEvent{
		Version:    "0",
		ID:         uuid.New().String(),
		DetailType: "AWS API Call via CloudTrail",
		Source:     "aws.s3",
		Time:       now.UTC(),
		Resources:  []string{},
		Detail:     d,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return b, nil
}
