package weaviate

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// DefaultClassName is the class holding indexed knowledge-base documents.
const DefaultClassName = "KnowledgeDocument"

// SDK encapsulates all Weaviate operations against the document class.
type SDK struct {
	client    *weaviate.Client
	className string
}

// NewSDK creates a new instance of SDK. An empty className falls back to
// DefaultClassName.
func NewSDK(client *weaviate.Client, className string) *SDK {
	if className == "" {
		className = DefaultClassName
	}
	return &SDK{
		client:    client,
		className: className,
	}
}

// EnsureSchema creates the document class if it does not exist yet. The
// ingestion pipeline owns writes; the search service only needs the class to
// be queryable.
func (w *SDK) EnsureSchema(ctx context.Context) error {
	exists, err := w.classExists(ctx, w.className)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %v", err)
	}
	if exists {
		return nil
	}

	properties := []*models.Property{
		{Name: "docId", DataType: []string{"text"}, Description: "Document id, chunk-suffixed for split documents"},
		{Name: "title", DataType: []string{"text"}},
		{Name: "content", DataType: []string{"text"}},
		{Name: "path", DataType: []string{"text"}, Description: "Hierarchical document path"},
		{Name: "spaceKey", DataType: []string{"text"}},
		{Name: "knowledgeBaseId", DataType: []string{"int"}},
		{Name: "keywords", DataType: []string{"text[]"}},
		{Name: "type", DataType: []string{"text"}},
		{Name: "webUrl", DataType: []string{"text"}},
		{Name: "downloadUrl", DataType: []string{"text"}},
	}

	class := &models.Class{
		Class:      w.className,
		Properties: properties,
		Vectorizer: "none",
	}

	err = w.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create Weaviate class: %v", err)
	}

	return nil
}

// classExists checks if a class exists in the schema
func (w *SDK) classExists(ctx context.Context, className string) (bool, error) {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %v", err)
	}

	for _, class := range schema.Classes {
		if class.Class == className {
			return true, nil
		}
	}

	return false, nil
}
