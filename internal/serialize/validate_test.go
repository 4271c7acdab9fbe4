package serialize

import (
	"testing"

	"github.com/pagecraft/backend/internal/models"
)

func TestValidateJSON(t *testing.T) {
	if !ValidateJSON(`{"a":1}`) {
		t.Error("valid JSON rejected")
	}
	if ValidateJSON(`{"a":`) {
		t.Error("truncated JSON accepted")
	}
	if ValidateJSON("") {
		t.Error("empty string accepted")
	}
}

func TestValidateProjectShape(t *testing.T) {
	s := testService()
	p := &models.Project{ID: "p1", Name: "ok", Version: "1.0.0", Canvas: testSnapshot("a")}
	raw, err := s.SerializeProject(p)
	if err != nil {
		t.Fatal(err)
	}
	if !s.ValidateProject(raw) {
		t.Error("well-formed project rejected")
	}

	// A canvas payload lacks the project fields.
	canvasRaw, err := s.SerializeCanvas(testSnapshot("a"))
	if err != nil {
		t.Fatal(err)
	}
	if s.ValidateProject(canvasRaw) {
		t.Error("canvas payload accepted as a project")
	}
	if s.ValidateProject("garbage") {
		t.Error("garbage accepted as a project")
	}
}

func TestValidateCanvasShape(t *testing.T) {
	s := testService()
	raw, err := s.SerializeCanvas(testSnapshot("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.ValidateCanvas(raw) {
		t.Error("well-formed canvas rejected")
	}
	if s.ValidateCanvas(`{"version":"1.0.0","timestamp":1,"data":{"x":1}}`) {
		t.Error("payload without canvas fields accepted")
	}
}
