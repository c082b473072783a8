package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockBucket is an in-memory fake of the S3 object subset used by Store.
type MockBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailPuts makes every PutObject answer 500.
	FailPuts bool
}

// Object returns the stored body for key.
func (m *MockBucket) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return append([]byte(nil), b...), ok
}

// NewMockForTests returns a Store backed by an in-memory fake HTTP transport.
func NewMockForTests() (*Store, *MockBucket) {
	bucket := &MockBucket{objects: make(map[string][]byte)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: bucket}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.Retryer = aws.NopRetryer{}
	})
	return newWithClient(client, "mock-bucket", ""), bucket
}

// RoundTrip serves Get and Put for path-style requests.
func (m *MockBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch req.Method {
	case http.MethodPut:
		if m.FailPuts {
			return response(http.StatusInternalServerError, nil, http.Header{}), nil
		}
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunkedLite(body); ok { // handle aws-chunked encoding
			body = dec
		}
		m.objects[key] = body
		return response(http.StatusOK, nil, http.Header{"ETag": {"\"etag\""}}), nil
	case http.MethodGet:
		body, ok := m.objects[key]
		if !ok {
			notFound := []byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return response(http.StatusNotFound, notFound, http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return response(http.StatusOK, body, http.Header{
			"Content-Length": {fmt.Sprintf("%d", len(body))},
			"Content-Type":   {"application/json"},
			"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			"ETag":           {"\"etag\""},
		}), nil
	}
	return response(http.StatusNotImplemented, nil, http.Header{}), nil
}

func response(status int, body []byte, header http.Header) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header, ContentLength: int64(len(body))}
}

// decodeChunkedLite decodes a minimal single-chunk aws-chunked style payload: <hex>\r\n<body>\r\n0\r\n...
func decodeChunkedLite(b []byte) ([]byte, bool) {
	s := string(b)
	idx := strings.Index(s, "\r\n")
	if idx <= 0 {
		return nil, false
	}
	var size int64
	if _, err := fmt.Sscanf(s[:idx], "%x", &size); err != nil {
		return nil, false
	}
	rest := s[idx+2:]
	if int64(len(rest)) < size+2 || rest[size:size+2] != "\r\n" || !strings.HasPrefix(rest[size+2:], "0") {
		return nil, false
	}
	return []byte(rest[:size]), true
}
