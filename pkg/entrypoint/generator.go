package entrypoint

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

const (
	// FileName is the name of the generated entry module.
	FileName = "index.js"
	// DefaultFunctionName is the export name of the HTTPS function.
	DefaultFunctionName = "ssr"
	// NodeVersion is the major version of the Cloud Functions Node runtime.
	NodeVersion = 20
)

var functionNameRegexp = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Generator renders the function entry module that re-exports the server
// bundle's request handler as an HTTPS-triggered Cloud Function.
type Generator struct {
	// ServerOutputPath is the server bundle's output path as configured in
	// the workspace. The bundle is required relative to the entry module.
	ServerOutputPath string
	FunctionName     string
	Writer           io.Writer
}

// Path returns where the entry module for serverOutputPath is written.
func Path(serverOutputPath string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(serverOutputPath)), FileName)
}

func (g Generator) Run() error {
	if err := g.validate(); err != nil {
		return err
	}

	t, err := template.New("entrypoint").Parse(entrypointTmpl)
	if err != nil {
		// The template is hardcoded in the binary, so if
		// there is a parse error, it was a programmer error.
		panic(err)
	}
	return t.Execute(g.Writer, struct {
		BundlePath   string
		FunctionName string
	}{
		BundlePath:   g.bundlePath(),
		FunctionName: g.functionName(),
	})
}

func (g Generator) validate() error {
	if strings.TrimSpace(g.ServerOutputPath) == "" {
		return fmt.Errorf("server output path is unset")
	}
	if !functionNameRegexp.MatchString(g.functionName()) {
		return fmt.Errorf("invalid function name %q", g.FunctionName)
	}
	if g.Writer == nil {
		return fmt.Errorf("writer is unset")
	}
	return nil
}

func (g Generator) functionName() string {
	if g.FunctionName == "" {
		return DefaultFunctionName
	}
	return g.FunctionName
}

// bundlePath is the require path of the server bundle's main module. The
// entry module sits in the parent of the server output, and the server output
// is moved one level deeper under its own configured path.
func (g Generator) bundlePath() string {
	p := path.Clean(filepath.ToSlash(g.ServerOutputPath))
	return "./" + strings.TrimPrefix(p, "/") + "/main"
}

const entrypointTmpl = `const functions = require('firebase-functions');

// The server bundle exports a factory for its Express request handler.
const app = require('{{.BundlePath}}').app();

exports.{{.FunctionName}} = functions.https.onRequest(app);
`
