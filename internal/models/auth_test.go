// ABOUTME: Tests for auth request/response models
// ABOUTME: Verifies JSON field names and registration form validation

package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestRegisterRequest_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(RegisterRequest{
		Username:        "alice",
		Email:           "a@x.com",
		Password:        "p1",
		ConfirmPassword: "p1",
	})
	if err != nil {
		t.Fatalf("Failed to marshal RegisterRequest: %v", err)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		t.Fatalf("Failed to unmarshal to map: %v", err)
	}
	for _, field := range []string{"username", "email", "password", "confirmPassword"} {
		if _, ok := jsonMap[field]; !ok {
			t.Errorf("Expected %q field in JSON", field)
		}
	}
}

func TestIdentity_OptionalID(t *testing.T) {
	var id Identity
	if err := json.Unmarshal([]byte(`{"username":"alice","email":"a@x.com"}`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.ID != 0 {
		t.Errorf("expected zero ID, got %d", id.ID)
	}
	if id.IsZero() {
		t.Error("expected identity with username to be non-zero")
	}

	data, _ := json.Marshal(id)
	if strings.Contains(string(data), `"id"`) {
		t.Errorf("expected id to be omitted, got %s", data)
	}
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
		is      error
	}{
		{
			name: "valid",
			req:  RegisterRequest{Username: "alice", Email: "a@x.com", Password: "p1", ConfirmPassword: "p1"},
		},
		{
			name:    "missing username",
			req:     RegisterRequest{Email: "a@x.com", Password: "p1", ConfirmPassword: "p1"},
			wantErr: true,
		},
		{
			name:    "password mismatch",
			req:     RegisterRequest{Username: "alice", Email: "a@x.com", Password: "p1", ConfirmPassword: "p2"},
			wantErr: true,
			is:      ErrPasswordMismatch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Errorf("expected %v, got %v", tc.is, err)
			}
		})
	}
}

func TestExamStatus_Label(t *testing.T) {
	tests := []struct {
		status   ExamStatus
		expected string
	}{
		{ExamPending, "Pending"},
		{ExamInProgress, "In progress"},
		{ExamCompleted, "Completed"},
		{ExamStatus("archived"), "Unknown"},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := tc.status.Label(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
