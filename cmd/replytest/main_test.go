package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestReplyTestSingleMessage(t *testing.T) {
	t.Setenv("OPENAI_KEY", "")
	t.Setenv("FLIPKART_LINK", "https://flipkart.example/slider")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"ORDER"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "https://flipkart.example/slider") {
		t.Fatalf("expected flipkart link in output, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "label=order") {
		t.Fatalf("expected order label, got:\n%s", out.String())
	}
}

func TestReplyTestSessionFromStdin(t *testing.T) {
	t.Setenv("OPENAI_KEY", "")
	t.Setenv("SHOPIFY_STORE_DOMAIN", "")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("TRACK\n#1023\n"))
	cmd.SetArgs(nil)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "next=AWAITING_ORDER_INPUT") {
		t.Fatalf("expected tracking prompt to await input, got:\n%s", got)
	}
	if !strings.Contains(got, "couldn't find") {
		t.Fatalf("expected not-found reply, got:\n%s", got)
	}
}
