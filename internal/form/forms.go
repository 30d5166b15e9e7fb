package form

// Registration accepts a Gmail address, a username and a password of at
// least minPasswordLength characters.
func Registration(minPasswordLength int) Schema {
	return Schema{Fields: []Field{
		{
			Name:  "gmail",
			Label: "Gmail",
			Trim:  true,
			Validators: []Validator{
				Required(""),
				Email(""),
				Gmail(""),
				MaxLength(255),
			},
		},
		{
			Name:  "username",
			Label: "Nombre de usuario",
			Trim:  true,
			Validators: []Validator{
				Required(""),
				Username(""),
				MinLength(3),
				MaxLength(150),
			},
		},
		{
			Name:  "password",
			Label: "Contraseña",
			Validators: []Validator{
				Required(""),
				Password(minPasswordLength),
			},
		},
		{
			Name:  "password_confirm",
			Label: "Confirmar contraseña",
			Validators: []Validator{
				Required(""),
				EqualTo("password", "Las contraseñas deben coincidir."),
			},
		},
	}}
}

// Login accepts a single identifier field: gmail address or username.
func Login() Schema {
	return Schema{Fields: []Field{
		{
			Name:  "identifier",
			Label: "Gmail o nombre de usuario",
			Trim:  true,
			Validators: []Validator{
				Required(""),
				MinLength(3),
				MaxLength(255),
			},
		},
		{
			Name:  "password",
			Label: "Contraseña",
			Validators: []Validator{
				Required(""),
			},
		},
	}}
}

// Property validates the add/edit listing form. Images are handled
// separately as multipart uploads.
func Property() Schema {
	return Schema{Fields: []Field{
		{Name: "name", Label: "Nombre", Trim: true, Validators: []Validator{Required(""), MaxLength(100)}},
		{Name: "description", Label: "Descripción", Trim: true, Validators: []Validator{Required("")}},
		{Name: "location", Label: "Ubicación", Trim: true, Validators: []Validator{Required(""), MaxLength(200)}},
		{Name: "price", Label: "Precio", Trim: true, Validators: []Validator{Required(""), Float("")}},
	}}
}
