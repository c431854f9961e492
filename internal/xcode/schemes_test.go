package xcode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listOutput = `Command line invocation:
    /Applications/Xcode.app/Contents/Developer/usr/bin/xcodebuild -list -project App.xcodeproj

Information about project "App":
    Targets:
        App
        AppTests

    Build Configurations:
        Debug
        Release

    If no build configuration is specified and -scheme is not passed then "Release" is used.

    Schemes:
        App
        App Staging

`

func TestParseSchemes(t *testing.T) {
	assert.Equal(t, []string{"App", "App Staging"}, ParseSchemes(listOutput))
}

func TestParseSchemesNoHeader(t *testing.T) {
	assert.Empty(t, ParseSchemes("Targets:\n    App\n"))
	assert.Empty(t, ParseSchemes(""))
}

func TestParseSchemesSwallowsLaterSections(t *testing.T) {
	out := "Schemes:\n    App\n\nOther:\n    Thing\n"
	assert.Equal(t, []string{"App", "Other:", "Thing"}, ParseSchemes(out))
}

func TestListSchemesInvokesXcodebuild(t *testing.T) {
	fake := stdoutRunner(listOutput)
	c := NewClient(fake)
	p := &Project{Root: "/work", Path: "App.xcworkspace", Kind: KindWorkspace}

	schemes, err := c.ListSchemes(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"App", "App Staging"}, schemes)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "/work", fake.calls[0].dir)
	assert.Equal(t, "xcodebuild", fake.calls[0].name)
	assert.Equal(t, []string{"-list", "-workspace", "App.xcworkspace"}, fake.calls[0].args)
}

func TestListSchemesNonZeroExitStillParses(t *testing.T) {
	fake := &fakeRunner{runFunc: func(string, []string) (Result, error) {
		return Result{Stdout: "", Stderr: "xcodebuild: error: bad project", ExitCode: 66}, nil
	}}
	c := NewClient(fake)

	schemes, err := c.ListSchemes(context.Background(), &Project{Root: "/w", Path: "A.xcodeproj", Kind: KindProject})
	require.NoError(t, err)
	assert.Empty(t, schemes)
}

func TestListSchemesStartFailure(t *testing.T) {
	fake := &fakeRunner{runFunc: func(string, []string) (Result, error) {
		return Result{ExitCode: -1}, errors.New("exec: \"xcodebuild\": executable file not found in $PATH")
	}}
	c := NewClient(fake)

	_, err := c.ListSchemes(context.Background(), &Project{Root: "/w", Path: "A.xcodeproj", Kind: KindProject})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing schemes")
}

func TestResolveScheme(t *testing.T) {
	available := []string{"App", "AppTests", "Widget"}

	tests := []struct {
		name      string
		available []string
		requested string
		fallback  string
		want      string
		wantErr   string
	}{
		{name: "requested wins over default", available: available, requested: "Widget", fallback: "AppTests", want: "Widget"},
		{name: "default when nothing requested", available: available, fallback: "AppTests", want: "AppTests"},
		{name: "first available", available: available, want: "App"},
		{name: "empty set without candidate", available: nil, want: ""},
		{name: "requested missing", available: available, requested: "Nope", fallback: "App", wantErr: "Nope"},
		{name: "stale default", available: available, fallback: "Gone", wantErr: "Gone"},
		{name: "requested against empty set", available: nil, requested: "App", wantErr: "App"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveScheme(tt.available, tt.requested, tt.fallback)
			if tt.wantErr != "" {
				var notFound *SchemeNotFoundError
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, tt.wantErr, notFound.Scheme)
				assert.Equal(t, tt.available, notFound.Available)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemeNotFoundMessage(t *testing.T) {
	err := &SchemeNotFoundError{Scheme: "Nope", Available: []string{"App", "Widget"}}
	assert.Equal(t, "Scheme 'Nope' not found. Available schemes: App, Widget", err.Error())
}
