package apiclient

import (
	"encoding/json"
	"errors"
	"strings"
)

// FallbackMessage is shown when a failure carries no server detail.
const FallbackMessage = "Something went wrong"

// LoginFallback is shown when the credential exchange fails without detail.
const LoginFallback = "Login failed"

// AuthError is a rejected credential exchange or an invalid/expired token.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// RequestError is any other network or server failure. Status is zero when
// no response was received.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string { return e.Message }
func (e *RequestError) Unwrap() error { return e.Err }

// ValidationError is a server-side rejection of a request body. Fields maps
// the form field name to its message; Message summarizes all of them.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Message returns the human-readable text for err: the server detail when
// there is one, otherwise FallbackMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		ae *AuthError
		re *RequestError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ae):
		return nonEmpty(ae.Message)
	case errors.As(err, &ve):
		return nonEmpty(ve.Message)
	case errors.As(err, &re):
		return nonEmpty(re.Message)
	}
	return FallbackMessage
}

// IsAuth reports whether err is an *AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func nonEmpty(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return FallbackMessage
	}
	return msg
}

// errorBody is the server's error envelope. detail is either a string or a
// list of field issues.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type fieldIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts a message and optional field issues from an error body.
func parseDetail(body []byte) (string, map[string]string) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil && s != "" {
		return s, nil
	}

	var issues []fieldIssue
	if err := json.Unmarshal(eb.Detail, &issues); err == nil && len(issues) > 0 {
		fields := map[string]string{}
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			msgs = append(msgs, is.Msg)
			if name := fieldName(is.Loc); name != "" {
				if _, ok := fields[name]; !ok {
					fields[name] = is.Msg
				}
			}
		}
		return strings.Join(msgs, "; "), fields
	}

	return eb.Message, nil
}

// serverFields maps wire names onto the client's form field names.
var serverFields = map[string]string{
	"github_username": "githubUsername",
	"Topic":           "topic",
	"group_id":        "groupId",
}

func fieldName(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	name, _ := loc[len(loc)-1].(string)
	if mapped, ok := serverFields[name]; ok {
		return mapped
	}
	return name
}
