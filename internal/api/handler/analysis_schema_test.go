package handler

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCreditScore_UnmarshalJSON(t *testing.T) {
	cases := map[string]string{
		`{"creditScore":"good"}`: "good",
		`{"creditScore":720}`:    "720",
		`{"creditScore":712.5}`:  "712.5",
	}
	for body, want := range cases {
		var req analyseRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("%s: unexpected error: %v", body, err)
		}
		if req.CreditScore == nil || string(*req.CreditScore) != want {
			t.Errorf("%s: expected %q, got %v", body, want, req.CreditScore)
		}
	}
}

func TestCreditScore_WrongTypeNamesField(t *testing.T) {
	for _, body := range []string{`{"creditScore":true}`, `{"creditScore":{"v":1}}`} {
		var req analyseRequest
		err := json.Unmarshal([]byte(body), &req)

		var ute *json.UnmarshalTypeError
		if !errors.As(err, &ute) {
			t.Fatalf("%s: expected type error, got %v", body, err)
		}
		if ute.Field != "creditScore" {
			t.Errorf("%s: expected field creditScore, got %q", body, ute.Field)
		}
	}
}
