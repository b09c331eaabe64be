package sections

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTitler struct {
	mock.Mock
}

func (m *mockTitler) SectionTitle(ctx context.Context, heading, body string) (string, error) {
	args := m.Called(ctx, heading, body)
	return args.String(0), args.Error(1)
}

const guide = `Intro paragraph before any heading.

# Guide

Welcome text.

## Install

Run the installer.

### Linux

Use the package manager.

## Configure

Edit the file.
`

func TestSplitBuildsHeadingPaths(t *testing.T) {
	got := Split(context.Background(), []byte(guide), "s3://docs/guide.md", Options{})
	require.Len(t, got, 5)

	assert.Equal(t, []string{"guide"}, got[0].SectionPath)
	assert.Equal(t, "Intro paragraph before any heading.", got[0].Body)
	assert.Equal(t, []string{"Guide"}, got[1].SectionPath)
	assert.Equal(t, []string{"Guide", "Install"}, got[2].SectionPath)
	assert.Equal(t, []string{"Guide", "Install", "Linux"}, got[3].SectionPath)
	assert.Equal(t, []string{"Guide", "Configure"}, got[4].SectionPath)
	assert.Equal(t, "Use the package manager.", got[3].Body)

	for i, s := range got {
		assert.Equal(t, i+1, s.SectionIndex)
		assert.Equal(t, "s3://docs/guide.md", s.SourceURI)
		assert.Equal(t, s.SectionPath[len(s.SectionPath)-1], s.Title)
		assert.NotEmpty(t, s.SectionID)
		assert.NotContains(t, s.Body, "#")
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	a := Split(context.Background(), []byte(guide), "doc.md", Options{})
	b := Split(context.Background(), []byte(guide), "doc.md", Options{})
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].SectionID, b[i].SectionID)
	}
	assert.NotEqual(t, a[1].SectionID, a[2].SectionID)
}

func TestSplitMergesSmallSections(t *testing.T) {
	got := Split(context.Background(), []byte(guide), "doc.md", Options{MinBytes: 40})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"doc", "Guide", "Install", "Linux", "Configure"}, got[0].SectionPath)
	assert.Contains(t, got[0].Body, "Run the installer.")
	assert.Contains(t, got[0].Body, "Edit the file.")
}

func TestSplitWithoutHeadings(t *testing.T) {
	got := Split(context.Background(), []byte("Just some text. And more."), "tenant/reports/q3.pdf", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"q3"}, got[0].SectionPath)
	assert.Equal(t, "Just some text. And more.", got[0].Body)
}

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, Split(context.Background(), []byte("  \n "), "doc.md", Options{}))
}

func TestSplitUsesTitler(t *testing.T) {
	titler := &mockTitler{}
	titler.On("SectionTitle", mock.Anything, "Install", mock.Anything).Return("Installing the tool", nil).Once()
	titler.On("SectionTitle", mock.Anything, "Configure", mock.Anything).Return(strings.Repeat("x", 150), nil).Once()
	titler.On("SectionTitle", mock.Anything, "Guide", mock.Anything).Return("", errors.New("llm down")).Once()

	md := "# Guide\n\nWelcome.\n\n## Install\n\nRun it.\n\n## Configure\n\nEdit it.\n"
	got := Split(context.Background(), []byte(md), "doc.md", Options{Titler: titler})
	require.Len(t, got, 3)
	assert.Equal(t, "Guide", got[0].Title, "falls back to heading on error")
	assert.Equal(t, "Installing the tool", got[1].Title)
	assert.Equal(t, "Configure", got[2].Title, "falls back to heading when too long")
	titler.AssertExpectations(t)
}

func TestSplitSetextHeadings(t *testing.T) {
	md := "Intro\n=====\n\nBody text here.\n\nUsage\n-----\nRun it.\n"
	got := Split(context.Background(), []byte(md), "doc.md", Options{})
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Intro"}, got[0].SectionPath)
	assert.Equal(t, "Body text here.", got[0].Body)
	assert.Equal(t, []string{"Intro", "Usage"}, got[1].SectionPath)
	assert.Equal(t, "Run it.", got[1].Body)
}

func TestSplitATXClosingSequence(t *testing.T) {
	got := Split(context.Background(), []byte("# Title ##\nBody.\n"), "doc.md", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Title"}, got[0].SectionPath)
	assert.Equal(t, "Body.", got[0].Body)
}

func TestSplitTitleInputKeepsRunes(t *testing.T) {
	// "é" is two bytes; the byte limit falls inside one of them.
	body := "a" + strings.Repeat("é", maxTitleInput)
	titler := &mockTitler{}
	titler.On("SectionTitle", mock.Anything, "Accents", mock.MatchedBy(func(input string) bool {
		return utf8.ValidString(input) && len(input) <= maxTitleInput && len(input) >= maxTitleInput-1
	})).Return("Accented text", nil).Once()

	got := Split(context.Background(), []byte("# Accents\n\n"+body+"\n"), "doc.md", Options{Titler: titler})
	require.Len(t, got, 1)
	assert.Equal(t, "Accented text", got[0].Title)
	titler.AssertExpectations(t)
}
