package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnermostCode(t *testing.T) {
	base := WorkbookIO("a.xlsx", stderrors.New("permission denied"))
	wrapped := Wrap(base, "fill failed")

	assert.Equal(t, CodeWorkbookIO, GetCode(wrapped))
	assert.Equal(t, "fill failed: workbook a.xlsx: permission denied", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestGetCodeForeignError(t *testing.T) {
	assert.Equal(t, CodeInternalError, GetCode(stderrors.New("boom")))
	assert.Equal(t, CodeInternalError, GetCode(Wrap(stderrors.New("boom"), "ctx")))
	assert.False(t, IsAppError(stderrors.New("boom")))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvalidInput("products must be a list"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, IsAppError(err))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeTemplateInvalid, stderrors.New("sheet missing"))
	assert.Equal(t, CodeTemplateInvalid, GetCode(err))
	assert.Equal(t, "sheet missing", err.Error())
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("x"), http.StatusBadRequest},
		{TemplateInvalid("x"), http.StatusBadRequest},
		{NotFound("file"), http.StatusNotFound},
		{WorkbookIO("a.xlsx", stderrors.New("x")), http.StatusUnprocessableEntity},
		{stderrors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
