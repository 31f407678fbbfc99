package account

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/kairos/internal/validation"
)

// promptCredentials asks for the fields of c that were not given as flags
func promptCredentials(mode validation.AuthMode, c *validation.Credentials) error {
	var fields []huh.Field
	if c.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&c.Email))
	}
	if mode == validation.SignUp && c.Username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(&c.Username))
	}
	if c.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password))
		if mode == validation.SignUp {
			fields = append(fields, huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&c.ConfirmPassword))
		}
	}
	if len(fields) == 0 {
		return nil
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeBase())
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive form error: %w", err)
	}
	return nil
}

func displayName(email, name string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
