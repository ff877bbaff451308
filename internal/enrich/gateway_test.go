package enrich

import (
	"context"
	"errors"
	"testing"
	"time"
)

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func gatewayWith(f genFunc) *Gateway {
	return NewGatewayWithGenerator(f, 2*time.Second, nil)
}

func TestSuggest_PlainJSON(t *testing.T) {
	gw := gatewayWith(func(_ context.Context, prompt string) (string, error) {
		if prompt == "" {
			t.Fatal("empty prompt")
		}
		return `{"industry":"IT/software","job_type":null,"location":"Tokyo","salary":"¥250,000","website_url":null}`, nil
	})

	s, err := gw.Suggest(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Industry == nil || *s.Industry != "IT/software" {
		t.Fatalf("industry: %#v", s.Industry)
	}
	if s.JobType != nil {
		t.Fatalf("job_type should be nil: %#v", s.JobType)
	}
	if s.Location == nil || *s.Location != "Tokyo" {
		t.Fatalf("location: %#v", s.Location)
	}
}

// Gemini fences the object even when told not to
func TestSuggest_CodeFencedJSON(t *testing.T) {
	responses := []string{
		"```json\n{\"industry\":\"finance\"}\n```",
		"```\n{\"industry\":\"finance\"}\n```",
		"Here you go:\n```json\n{\"industry\":\"finance\"}\n```\nHope that helps!",
	}
	for _, resp := range responses {
		gw := gatewayWith(func(_ context.Context, _ string) (string, error) {
			return resp, nil
		})
		s, err := gw.Suggest(context.Background(), "Acme")
		if err != nil {
			t.Fatalf("resp=%q: %v", resp, err)
		}
		if s.Industry == nil || *s.Industry != "finance" {
			t.Fatalf("resp=%q: industry=%#v", resp, s.Industry)
		}
	}
}

func TestSuggest_NonJSONIsParseFailure(t *testing.T) {
	for _, resp := range []string{"I don't know that company.", `["a","b"]`, `"just a string"`} {
		gw := gatewayWith(func(_ context.Context, _ string) (string, error) {
			return resp, nil
		})
		_, err := gw.Suggest(context.Background(), "Acme")
		var ge *GatewayError
		if !errors.As(err, &ge) || ge.Kind != KindParseFailure {
			t.Fatalf("resp=%q: want ParseFailure, got %v", resp, err)
		}
	}
}

func TestSuggest_ProviderError(t *testing.T) {
	gw := gatewayWith(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	_, err := gw.Suggest(context.Background(), "Acme")
	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Kind != KindProviderError {
		t.Fatalf("want ProviderError, got %v", err)
	}
}

func TestSuggest_TimeoutIsProviderError(t *testing.T) {
	gw := NewGatewayWithGenerator(genFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), 20*time.Millisecond, nil)

	_, err := gw.Suggest(context.Background(), "Acme")
	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Kind != KindProviderError {
		t.Fatalf("want ProviderError on timeout, got %v", err)
	}
}

func TestSuggest_Unavailable(t *testing.T) {
	gw, err := NewGateway(context.Background(), "", "", time.Second, nil)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	if gw.Available() {
		t.Fatal("gateway without a key must report unavailable")
	}
	_, err = gw.Suggest(context.Background(), "Acme")
	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Kind != KindUnavailable {
		t.Fatalf("want Unavailable, got %v", err)
	}
}
