package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutrieve/nutrieve/pkg/validate"
)

type signupInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,ascii,min=8,max=16"`
	Phone    string `json:"phone"    validate:"nullable,max=20"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "Asha",
		Email:    "asha@nutrieve.in",
		Password: "masala123",
	})
	assert.False(t, validate.HasErrors(errs), errs)
}

func TestRequiredFields(t *testing.T) {
	errs := validate.Struct(&signupInput{})

	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "phone")
	assert.Equal(t, "The email field is required.", errs["email"])
}

func TestPasswordRules(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"too short", "short1", false},
		{"exactly eight", "abcdefgh", true},
		{"exactly sixteen", "abcdefghijklmnop", true},
		{"too long", "abcdefghijklmnopq", false},
		{"non ascii", "pässwörd1", false},
		{"control character", "abc\tdefgh", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := validate.Struct(signupInput{Name: "A", Email: "a@b.in", Password: tc.password})
			_, failed := errs["password"]
			assert.Equal(t, !tc.valid, failed, errs)
		})
	}
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "A", Email: "not-an-email", Password: "abcdefgh"})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
}

func TestInRule(t *testing.T) {
	type in struct {
		Stage string `json:"stage" validate:"nullable,in=hot|warm|cold"`
	}

	assert.Empty(t, validate.Struct(in{Stage: "warm"}))
	assert.Empty(t, validate.Struct(in{}))
	assert.Equal(t, "The selected stage is invalid.", validate.Struct(in{Stage: "lukewarm"})["stage"])
}

func TestDigitsAndNumericBounds(t *testing.T) {
	type in struct {
		Pincode  string `json:"pincode"  validate:"required,digits=6"`
		Quantity int    `json:"quantity" validate:"gte=1,lte=1000"`
	}

	assert.Empty(t, validate.Struct(in{Pincode: "560001", Quantity: 3}))

	errs := validate.Struct(in{Pincode: "56000A", Quantity: 0})
	assert.Contains(t, errs, "pincode")
	assert.Contains(t, errs, "quantity")

	errs = validate.Struct(in{Pincode: "5600011", Quantity: 1001})
	assert.Contains(t, errs, "pincode")
	assert.Contains(t, errs, "quantity")
}

func TestPointerFields(t *testing.T) {
	type in struct {
		Email *string `json:"email" validate:"nullable,email"`
		Owner *uint   `json:"owner_id" validate:"required"`
	}

	bad := "nope"
	errs := validate.Struct(in{Email: &bad})
	assert.Contains(t, errs, "email")
	assert.Equal(t, "The owner_id field is required.", errs["owner_id"])

	good := "crm@nutrieve.in"
	owner := uint(7)
	assert.Empty(t, validate.Struct(in{Email: &good, Owner: &owner}))
}
