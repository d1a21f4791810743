package book

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("positive_int", validatePositiveInt)
}

func validatePositiveInt(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n > 0
}

// BookForm is the raw create/edit form as submitted by a browser.
type BookForm struct {
	Title     string `form:"title" validate:"required"`
	Author    string `form:"author" validate:"required"`
	Publisher string `form:"publisher"`
	Synopsis  string `form:"synopsis"`
	Subjects  string `form:"subjects"`
	ISBN10    string `form:"isbn10" validate:"omitempty,len=10"`
	ISBN13    string `form:"isbn13" validate:"omitempty,len=13,number"`
	Price     string `form:"price"`
	Format    string `form:"format" validate:"omitempty,oneof=Digital Physical"`
	Pages     string `form:"pages" validate:"omitempty,positive_int"`
}

// ValidationError describes one rejected form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BookFormFromValues reads a submitted form, trimming every value.
func BookFormFromValues(v url.Values) BookForm {
	get := func(key string) string { return strings.TrimSpace(v.Get(key)) }
	return BookForm{
		Title:     get("title"),
		Author:    get("author"),
		Publisher: get("publisher"),
		Synopsis:  get("synopsis"),
		Subjects:  get("subjects"),
		ISBN10:    get("isbn10"),
		ISBN13:    get("isbn13"),
		Price:     get("price"),
		Format:    get("format"),
		Pages:     get("pages"),
	}
}

// BookFormFromBook pre-fills an edit form.
func BookFormFromBook(b Book) BookForm {
	f := BookForm{
		Title:     b.Title,
		Author:    b.Author,
		Publisher: b.Publisher,
		Synopsis:  b.Synopsis,
		Subjects:  b.Subjects,
		ISBN10:    b.ISBN10,
		Price:     b.Price,
		Format:    b.Format,
	}
	if b.ISBN13 != nil {
		f.ISBN13 = strconv.FormatInt(*b.ISBN13, 10)
	}
	if b.Pages != nil {
		f.Pages = strconv.Itoa(*b.Pages)
	}
	return f
}

// Validate checks the form and returns one entry per failing field, or nil.
func (f BookForm) Validate() []ValidationError {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, fe := range err.(validator.ValidationErrors) {
		field := fe.Field()
		var message string
		switch {
		case fe.Tag() == "required":
			message = fmt.Sprintf("%s is required", label(field))
		case field == "isbn10":
			message = "ISBN-10 must be exactly 10 characters"
		case field == "isbn13":
			message = "ISBN-13 must be exactly 13 digits"
		case fe.Tag() == "oneof":
			message = fmt.Sprintf("%s must be one of: %s", label(field), strings.ReplaceAll(fe.Param(), " ", ", "))
		case fe.Tag() == "positive_int":
			message = fmt.Sprintf("%s must be a positive number", label(field))
		default:
			message = fmt.Sprintf("%s is invalid", label(field))
		}
		errs = append(errs, ValidationError{Field: field, Message: message})
	}
	return errs
}

func label(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// Book converts a valid form into a Book. Optional fields left blank stay unset.
func (f BookForm) Book() Book {
	b := Book{
		Title:     f.Title,
		Author:    f.Author,
		Publisher: f.Publisher,
		Synopsis:  f.Synopsis,
		Subjects:  f.Subjects,
		ISBN10:    f.ISBN10,
		Price:     f.Price,
		Format:    f.Format,
	}
	if n, err := strconv.ParseInt(f.ISBN13, 10, 64); err == nil {
		b.ISBN13 = &n
	}
	if n, err := strconv.Atoi(f.Pages); err == nil && n > 0 {
		b.Pages = &n
	}
	return b
}

// CheckRequired enforces the fields the backend cannot accept a book without.
func CheckRequired(b Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: missing required field: title", ErrInvalid)
	}
	if strings.TrimSpace(b.Author) == "" {
		return fmt.Errorf("%w: missing required field: author", ErrInvalid)
	}
	return nil
}
