package dom

import "github.com/nao1215/secretsanta/internal/formdata"

// NewFormData builds the entry list of form as it stands right now: every
// named, enabled control in document order. File inputs contribute one entry
// per selected file, or a single empty file entry when nothing is selected.
func NewFormData(form *Element) (*formdata.FormData, error) {
	if form == nil || form.tag != "form" {
		return nil, ErrNotForm
	}

	fd := formdata.New()
	form.Find(func(e *Element) bool {
		appendControl(fd, e)
		return false // visit everything
	})
	return fd, nil
}

func appendControl(fd *formdata.FormData, e *Element) {
	if !isControl(e) || e.HasAttribute("disabled") {
		return
	}
	name := e.attrs["name"]
	if name == "" {
		return
	}

	switch e.tag {
	case "button":
		// only the submitter would contribute; programmatic submits have none
		return
	case "textarea", "select":
		fd.Append(name, e.Value())
		return
	}

	switch e.InputType() {
	case "submit", "button", "reset", "image":
		return
	case "checkbox", "radio":
		if !e.HasAttribute("checked") {
			return
		}
		v := e.Value()
		if v == "" {
			v = "on"
		}
		fd.Append(name, v)
	case "file":
		if len(e.files) == 0 {
			fd.AppendFile(name, &formdata.File{ContentType: formdata.DefaultFileType})
			return
		}
		for _, f := range e.files {
			fd.AppendFile(name, f)
		}
	default:
		fd.Append(name, e.Value())
	}
}
