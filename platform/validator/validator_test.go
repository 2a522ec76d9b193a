package validator

import "testing"

type interestsRequest struct {
	Interests []string `validate:"max=3,dive,tag"`
	Email     string   `validate:"omitempty,email"`
}

func TestTagValidation(t *testing.T) {
	val := New()

	if err := val.Struct(interestsRequest{Interests: []string{"data-science", "ml2"}}); err != nil {
		t.Fatalf("expected kebab tags to pass, got %v", err)
	}
	if err := val.Struct(interestsRequest{Interests: []string{"Data Science"}}); err == nil {
		t.Fatal("expected spaced, capitalised tag to fail")
	}
	if err := val.Struct(interestsRequest{Email: "not-an-email"}); err == nil {
		t.Fatal("expected invalid email to fail")
	}
	if err := val.Var("1-3-months", "tag"); err != nil {
		t.Fatalf("expected timeline tag to pass, got %v", err)
	}
}
