package validate_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"vendorhub/internal/validate"
)

type form struct {
	Name  string `validate:"required,max=5" label:"Shop name"`
	Email string `validate:"required,email"`
	Phone string `validate:"phone"`
	Pass  string `validate:"strongpw"`
}

func TestStructMessages(t *testing.T) {
	ok := form{Name: "Asha", Email: "a@b.co", Phone: "+1 (555) 010-2030", Pass: "Str0ng!pw"}
	assert.Empty(t, validate.Struct(ok))

	f := ok
	f.Name = ""
	assert.Equal(t, "Shop name is required.", validate.Struct(f))

	f = ok
	f.Name = "Too long"
	assert.Equal(t, "Shop name is too long.", validate.Struct(f))

	f = ok
	f.Email = "nope"
	assert.Equal(t, "Please enter a valid email address.", validate.Struct(f))

	f = ok
	f.Phone = "call me"
	assert.Equal(t, "Please enter a valid phone number.", validate.Struct(f))

	f = ok
	f.Pass = "weakpass"
	assert.Contains(t, validate.Struct(f), "Password must be 8-20 characters")
}

func TestPassword(t *testing.T) {
	assert.True(t, validate.Password("Passw0rd!"))
	assert.False(t, validate.Password("Pw0!"))
	assert.False(t, validate.Password("passw0rd!"))
	assert.False(t, validate.Password("PASSW0RD!"))
	assert.False(t, validate.Password("Password!"))
	assert.False(t, validate.Password("Passw0rdd"))
	assert.False(t, validate.Password("Passw0rd!Passw0rd!xyz"))
}

func TestPriceAndStock(t *testing.T) {
	for in, want := range map[string]float64{"0": 0, " 12.50 ": 12.5, "1e3": 1000} {
		got, ok := validate.Price(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "-1", "abc", "NaN", "Inf"} {
		_, ok := validate.Price(in)
		assert.False(t, ok, in)
	}

	n, ok := validate.Stock(" 7 ")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	for _, in := range []string{"", "-2", "1.5", "ten"} {
		_, ok := validate.Stock(in)
		assert.False(t, ok, in)
	}
}

func TestColor(t *testing.T) {
	c, ok := validate.Color(" #a1b2c3 ")
	assert.True(t, ok)
	assert.Equal(t, "#A1B2C3", c)

	for _, in := range []string{"", "a1b2c3", "#abc", "#GGGGGG", "red"} {
		_, ok := validate.Color(in)
		assert.False(t, ok, in)
	}
}

func TestIDAndQuery(t *testing.T) {
	id, ok := validate.ID(" p-seed_1 ")
	assert.True(t, ok)
	assert.Equal(t, "p-seed_1", id)
	for _, in := range []string{"", "../etc", "a b", "x;drop"} {
		_, ok := validate.ID(in)
		assert.False(t, ok, in)
	}

	q, ok := validate.Q("  Men's tee ")
	assert.True(t, ok)
	assert.Equal(t, "Men's tee", q)
	for _, in := range []string{"(XL)", "50%", "tee/top", "off!", "<script>"} {
		got, ok := validate.Q(in)
		assert.True(t, ok, in)
		assert.Equal(t, in, got)
	}
	for _, in := range []string{"   ", "tee\x00", "a\tb", "\xff\xfe"} {
		_, ok := validate.Q(in)
		assert.False(t, ok, in)
	}

	long := strings.Repeat("é", 60)
	q, ok = validate.Q(long)
	assert.True(t, ok)
	assert.Equal(t, strings.Repeat("é", 50), q)
	assert.True(t, utf8.ValidString(q))
}

func TestEmail(t *testing.T) {
	e, ok := validate.Email(" vendor@vendorhub.test ")
	assert.True(t, ok)
	assert.Equal(t, "vendor@vendorhub.test", e)
	_, ok = validate.Email("vendor@")
	assert.False(t, ok)
}
