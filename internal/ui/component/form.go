package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-launchpad/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Placeholder string
	Required    bool
	Validation  func(string) error
	Error       string

	textInput textinput.Model
}

// Form is a vertical list of text inputs. Enter on the last field submits.
type Form struct {
	fields     []FormField
	focusIndex int
	width      int
	disabled   bool

	labelStyle    lipgloss.Style
	inputStyle    lipgloss.Style
	focusedStyle  lipgloss.Style
	disabledStyle lipgloss.Style
	errorStyle    lipgloss.Style
}

// SubmitMsg is emitted when enter is pressed on the last field.
type SubmitMsg struct{}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			MarginRight(1),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		disabledStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 1).
			Border(lipgloss.HiddenBorder()),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 40
	ti.Placeholder = placeholder
	if fieldType == FieldTypeNumber && placeholder == "" {
		ti.Placeholder = "0"
	}

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	})

	if len(f.fields) == 1 {
		f.fields[0].textInput.Focus()
	}
	return f
}

// SetFieldValue sets the value of a field
func (f *Form) SetFieldValue(name, value string) *Form {
	for i := range f.fields {
		if f.fields[i].Name == name {
			f.fields[i].Value = value
			f.fields[i].textInput.SetValue(value)
			break
		}
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	for i := range f.fields {
		if f.fields[i].Name == name {
			f.fields[i].Validation = validation
			break
		}
	}
	return f
}

// SetFieldError shows err under the named field.
func (f *Form) SetFieldError(name, message string) {
	for i := range f.fields {
		if f.fields[i].Name == name {
			f.fields[i].Error = message
			return
		}
	}
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 4 // Account for padding and borders
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}

// SetDisabled блокирует ввод, пока идёт запуск.
func (f *Form) SetDisabled(disabled bool) {
	f.disabled = disabled
	if len(f.fields) == 0 {
		return
	}
	if disabled {
		f.fields[f.focusIndex].textInput.Blur()
	} else {
		f.fields[f.focusIndex].textInput.Focus()
	}
}

func (f *Form) Disabled() bool { return f.disabled }

// FocusedField returns the name of the field with focus.
func (f *Form) FocusedField() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 || f.disabled {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.moveFocus(1)
			return f, nil
		case "shift+tab", "up":
			f.moveFocus(-1)
			return f, nil
		case "enter":
			if f.focusIndex == len(f.fields)-1 {
				return f, func() tea.Msg { return SubmitMsg{} }
			}
			f.moveFocus(1)
			return f, nil
		}
	}

	field := &f.fields[f.focusIndex]
	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	if v := field.textInput.Value(); v != field.Value {
		field.Value = v
		field.Error = ""
	}
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return "No fields defined"
	}

	var content strings.Builder
	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		content.WriteString(f.labelStyle.Render(label))
		content.WriteString("\n")

		fieldStyle := f.inputStyle
		switch {
		case f.disabled:
			fieldStyle = f.disabledStyle
		case i == f.focusIndex:
			fieldStyle = f.focusedStyle
		}
		content.WriteString(fieldStyle.Render(field.textInput.View()))
		content.WriteString("\n")

		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
			content.WriteString("\n")
		}
	}
	return content.String()
}

func (f *Form) moveFocus(delta int) {
	f.fields[f.focusIndex].textInput.Blur()
	f.focusIndex = (f.focusIndex + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focusIndex].textInput.Focus()
}

// Validate validates all form fields
func (f *Form) Validate() bool {
	valid := true
	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""

		if field.Required && strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}
		if field.Validation != nil {
			if err := field.Validation(field.Value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}
	return valid
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	for _, field := range f.fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

// Reset clears all form fields
func (f *Form) Reset() *Form {
	for i := range f.fields {
		f.fields[i].Value = ""
		f.fields[i].Error = ""
		f.fields[i].textInput.SetValue("")
		f.fields[i].textInput.Blur()
	}
	f.focusIndex = 0
	if len(f.fields) > 0 && !f.disabled {
		f.fields[0].textInput.Focus()
	}
	return f
}
