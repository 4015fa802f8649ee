package sms

import (
	"errors"
	"testing"
)

func TestParseLogin(t *testing.T) {
	cmd, err := Parse("LOGIN secret123")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	login, ok := cmd.(LoginCommand)
	if !ok {
		t.Fatalf("got %T, want LoginCommand", cmd)
	}
	if login.Password != "secret123" {
		t.Fatalf("password = %q", login.Password)
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	for _, body := range []string{"balance", "Balance", "BALANCE", "  balance  "} {
		cmd, err := Parse(body)
		if err != nil {
			t.Fatalf("parse %q failed: %v", body, err)
		}
		if _, ok := cmd.(BalanceCommand); !ok {
			t.Fatalf("parse %q = %T, want BalanceCommand", body, cmd)
		}
	}
}

func TestParseVerify(t *testing.T) {
	cmd, err := Parse("VERIFY 123456")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	verify, ok := cmd.(VerifyCommand)
	if !ok || verify.Code != "123456" {
		t.Fatalf("got %#v", cmd)
	}
}

func TestParseVerifyRejectsNonDigits(t *testing.T) {
	_, err := Parse("VERIFY abc123")
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("expected UsageError, got %v", err)
	}
	if usage.Hint != "Invalid OTP format. Please try again." {
		t.Fatalf("unexpected hint: %q", usage.Hint)
	}
}

func TestParseTransfer(t *testing.T) {
	cmd, err := Parse("TRANSFER 150.50 bob@pay groceries")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tr, ok := cmd.(TransferCommand)
	if !ok {
		t.Fatalf("got %T, want TransferCommand", cmd)
	}
	if tr.Amount != 15050 || tr.Address != "bob@pay" || tr.Description != "groceries" || tr.Token != "" {
		t.Fatalf("unexpected command: %#v", tr)
	}
}

func TestParseTransferWithToken(t *testing.T) {
	cmd, err := Parse("TRANSFER 20 bob@pay rent eyJhbGciOi")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tr := cmd.(TransferCommand)
	if tr.Token != "eyJhbGciOi" {
		t.Fatalf("token = %q", tr.Token)
	}
}

func TestParseTransferUsageErrors(t *testing.T) {
	cases := []string{
		"TRANSFER",
		"TRANSFER 100",
		"TRANSFER 100 bob@pay",
		"TRANSFER abc bob@pay note",
		"TRANSFER -5 bob@pay note",
		"TRANSFER 0 bob@pay note",
	}
	for _, body := range cases {
		_, err := Parse(body)
		var usage *UsageError
		if !errors.As(err, &usage) {
			t.Errorf("parse %q: expected UsageError, got %v", body, err)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	cmd, err := Parse("FROBNICATE now")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	unknown, ok := cmd.(UnknownCommand)
	if !ok || unknown.Keyword != "FROBNICATE" {
		t.Fatalf("got %#v", cmd)
	}
}

func TestParseEmptyBody(t *testing.T) {
	cmd, err := Parse("   ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, ok := cmd.(UnknownCommand); !ok {
		t.Fatalf("got %T, want UnknownCommand", cmd)
	}
}

func TestParseHelp(t *testing.T) {
	cmd, err := Parse("help")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, ok := cmd.(HelpCommand); !ok {
		t.Fatalf("got %T, want HelpCommand", cmd)
	}
}
