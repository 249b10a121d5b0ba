package api_test

import "encoding/base64"

func base64Std(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func ptr[T any](v T) *T { return &v }
