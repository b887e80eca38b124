package openapi

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	// Version is the OpenAPI version emitted by Document.
	Version = "3.0.3"
	// SubmitPath is the templated path of the submit operation.
	SubmitPath = "/form/{shareId}"
	// SchemaName is the component name of the submission schema.
	SchemaName = "Submission"
	// ExtensionShareID carries the share id on the info object.
	ExtensionShareID = "x-share-id"
)

// Document builds an OpenAPI document describing how to submit the shared
// form doc. The submission schema is registered as a component and inlined
// into the request body.
func Document(doc model.Document, shareID string) *openapi3.T {
	title := strings.TrimSpace(doc.Name)
	if title == "" {
		title = "Untitled Form"
	}
	schema := SubmissionSchema(doc)

	op := openapi3.NewOperation()
	op.OperationID = "submitForm"
	op.Summary = "Submit " + title
	op.AddParameter(openapi3.NewPathParameter("shareId").
		WithSchema(openapi3.NewStringSchema()).
		WithDescription("Share identifier of the form"))
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(schema),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Form submitted!"),
		}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Validation failed").
				WithJSONSchema(errorSchema()),
		}),
		openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Form not found"),
		}),
	)

	info := &openapi3.Info{Title: title, Version: "1.0.0"}
	if shareID != "" {
		info.Extensions = map[string]any{ExtensionShareID: shareID}
	}

	return &openapi3.T{
		OpenAPI: Version,
		Info:    info,
		Paths: openapi3.NewPaths(
			openapi3.WithPath(SubmitPath, &openapi3.PathItem{Post: op}),
		),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{SchemaName: schema.NewRef()},
		},
	}
}

func errorSchema() *openapi3.Schema {
	errs := openapi3.NewObjectSchema().
		WithAdditionalProperties(openapi3.NewStringSchema())
	return openapi3.NewObjectSchema().WithProperty("errors", errs)
}
