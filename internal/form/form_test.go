package form

import (
	"net/url"
	"testing"
)

func TestRegistrationSchema(t *testing.T) {
	schema := Registration(8)

	t.Run("valid submission", func(t *testing.T) {
		values := url.Values{
			"gmail":            {" alice@gmail.com "},
			"username":         {"alice"},
			"password":         {"hunter2hunter2"},
			"password_confirm": {"hunter2hunter2"},
		}
		data, errs := schema.Validate(values)
		if errs.Any() {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if data["gmail"] != "alice@gmail.com" {
			t.Fatalf("gmail not trimmed: %q", data["gmail"])
		}
	})

	t.Run("rejects non-gmail address", func(t *testing.T) {
		values := url.Values{
			"gmail":            {"alice@example.com"},
			"username":         {"alice"},
			"password":         {"hunter2hunter2"},
			"password_confirm": {"hunter2hunter2"},
		}
		_, errs := schema.Validate(values)
		if len(errs["gmail"]) == 0 {
			t.Fatal("expected gmail error")
		}
	})

	t.Run("collects all failures at once", func(t *testing.T) {
		values := url.Values{
			"gmail":            {"not-an-email"},
			"username":         {"a!"},
			"password":         {"short"},
			"password_confirm": {"different"},
		}
		_, errs := schema.Validate(values)
		for _, field := range []string{"gmail", "username", "password", "password_confirm"} {
			if len(errs[field]) == 0 {
				t.Fatalf("expected error for %s, got %v", field, errs)
			}
		}
	})

	t.Run("password mismatch message", func(t *testing.T) {
		values := url.Values{
			"gmail":            {"alice@gmail.com"},
			"username":         {"alice"},
			"password":         {"hunter2hunter2"},
			"password_confirm": {"hunter2hunter3"},
		}
		_, errs := schema.Validate(values)
		if errs.First("password_confirm") != "Las contraseñas deben coincidir." {
			t.Fatalf("message = %q", errs.First("password_confirm"))
		}
	})

	t.Run("password is not trimmed", func(t *testing.T) {
		values := url.Values{
			"gmail":            {"alice@gmail.com"},
			"username":         {"alice"},
			"password":         {"  spaces ok  "},
			"password_confirm": {"  spaces ok  "},
		}
		data, errs := schema.Validate(values)
		if errs.Any() {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if data["password"] != "  spaces ok  " {
			t.Fatalf("password was trimmed: %q", data["password"])
		}
	})
}

func TestLoginSchema(t *testing.T) {
	schema := Login()

	_, errs := schema.Validate(url.Values{})
	if len(errs["identifier"]) == 0 || len(errs["password"]) == 0 {
		t.Fatalf("empty form: %v", errs)
	}

	_, errs = schema.Validate(url.Values{
		"identifier": {"alice"},
		"password":   {"x"},
	})
	if errs.Any() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestPropertySchema(t *testing.T) {
	schema := Property()

	t.Run("valid", func(t *testing.T) {
		_, errs := schema.Validate(url.Values{
			"name":        {"Casa del Bosque"},
			"description": {"Amplia y luminosa."},
			"location":    {"Valle de Bravo"},
			"price":       {"3250000.50"},
		})
		if errs.Any() {
			t.Fatalf("unexpected errors: %v", errs)
		}
	})

	t.Run("rejects non-numeric price", func(t *testing.T) {
		_, errs := schema.Validate(url.Values{
			"name":        {"Casa"},
			"description": {"x"},
			"location":    {"y"},
			"price":       {"tres millones"},
		})
		if len(errs["price"]) == 0 {
			t.Fatal("expected price error")
		}
	})
}

func TestErrorsAll(t *testing.T) {
	schema := Schema{Fields: []Field{
		{Name: "a"},
		{Name: "b"},
	}}
	errs := Errors{}
	errs.Add("b", "segundo")
	errs.Add("a", "primero")

	all := errs.All(schema)
	if len(all) != 2 || all[0] != "primero" || all[1] != "segundo" {
		t.Fatalf("All = %v, want field declaration order", all)
	}
}
