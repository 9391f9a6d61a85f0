package application

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/dfryer1193/quill/blog/domain"
	"github.com/go-playground/validator/v10"
)

// formValidate checks submitted forms; field names are reported by their form tag
var formValidate *validator.Validate

func init() {
	formValidate = validator.New()
	formValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	_ = formValidate.RegisterValidation("pattern", validatePattern)
}

// validatePattern accepts strings that compile as case-insensitive search patterns
func validatePattern(fl validator.FieldLevel) bool {
	_, err := compileSearch(fl.Field().String())
	return err == nil
}

func compileSearch(query string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + query)
}

// PostForm is the submitted write/edit form
type PostForm struct {
	Author  string `form:"author" validate:"required"`
	Title   string `form:"title" validate:"required"`
	Tags    string `form:"tags" validate:"required"`
	Body    string `form:"body" validate:"required"`
	Publish string `form:"publish"`
	Format  string `form:"format" validate:"omitempty,oneof=html markdown"`
}

// Published reports whether the publish checkbox was ticked
func (f *PostForm) Published() bool {
	return f.Publish != ""
}

// Validate trims the text fields and reports every missing one
func (f *PostForm) Validate() error {
	f.Author = strings.TrimSpace(f.Author)
	f.Title = strings.TrimSpace(f.Title)
	f.Tags = strings.TrimSpace(f.Tags)
	f.Body = strings.TrimSpace(f.Body)
	f.Format = strings.ToLower(strings.TrimSpace(f.Format))
	return toValidationError(formValidate.Struct(f))
}

func (f *PostForm) fields() domain.PostFields {
	return domain.PostFields{
		Title:   f.Title,
		Author:  f.Author,
		Tags:    f.Tags,
		Body:    f.Body,
		Publish: f.Published(),
	}
}

func (f *PostForm) update() domain.PostUpdate {
	return domain.PostUpdate{
		Title:   f.Title,
		Tags:    f.Tags,
		Body:    f.Body,
		Publish: f.Published(),
	}
}

// IsMarkdown reports whether the body was submitted as Markdown
func (f *PostForm) IsMarkdown() bool {
	return f.Format == FormatMarkdown
}

// FormFromPost pre-fills an edit form with the stored post
func FormFromPost(post *domain.Post) PostForm {
	form := PostForm{
		Author: post.Author,
		Title:  post.Title,
		Tags:   post.Tags,
		Body:   post.Body,
		Format: FormatHTML,
	}
	if post.Publish {
		form.Publish = "y"
	}
	return form
}

// SearchForm is the visitor search box
type SearchForm struct {
	Search string `form:"search" validate:"required,pattern"`
}

func (f *SearchForm) Validate() error {
	f.Search = strings.TrimSpace(f.Search)
	return toValidationError(formValidate.Struct(f))
}

// toValidationError maps validator failures onto domain field errors
func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, domain.FieldError{
			Field: fe.Field(),
			Code:  validationCode(fe.Tag()),
		})
	}
	return out
}

func validationCode(tag string) domain.ValidationCode {
	switch tag {
	case "required":
		return domain.CodeRequired
	case "pattern":
		return domain.CodeInvalidPattern
	case "oneof":
		return domain.CodeUnsupported
	default:
		return domain.ValidationCode(tag)
	}
}
