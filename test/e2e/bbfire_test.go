package e2e_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bbfire/builders/cmd/bbfire/root"
	"github.com/bbfire/builders/pkg/manifest"
)

const angularJSON = `{
  "version": 1,
  "defaultProject": "shop",
  "projects": {
    "shop": {
      "root": "",
      "architect": {
        "build": {"options": {"outputPath": "dist/shop/browser"}},
        "server": {"options": {"outputPath": "dist/shop/server", "bundleDependencies": true, "externalDependencies": ["express"]}}
      }
    }
  }
}`

const firebaseRC = `{"projects": {"default": "shop-prod"}, "targets": {"shop-prod": {"hosting": {"shop": ["shop-prod"]}}}}`

func bbfire(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := root.NewCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(GinkgoWriter)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("bbfire", func() {
	var workspaceDir string

	BeforeEach(func() {
		workspaceDir = GinkgoT().TempDir()
		for name, content := range map[string]string{
			"angular.json": angularJSON,
			".firebaserc":  firebaseRC,
			"package.json": `{"name": "shop", "dependencies": {"express": "^4.19.0"}}`,
			".env":         "BBFIRE_NPM=" + filepath.Join(binDir, "npm") + "\nBBFIRE_NODE=" + filepath.Join(binDir, "node") + "\n",
		} {
			Expect(os.WriteFile(filepath.Join(workspaceDir, name), []byte(content), 0644)).To(Succeed())
		}
		DeferCleanup(os.Unsetenv, "BBFIRE_NPM")
		DeferCleanup(os.Unsetenv, "BBFIRE_NODE")
	})

	readFile := func(name string) string {
		b, err := os.ReadFile(filepath.Join(workspaceDir, name))
		Expect(err).NotTo(HaveOccurred())
		return string(b)
	}

	Context("deploy", func() {
		It("packages the build outputs as a function", func() {
			_, err := bbfire("deploy", "--workspace", workspaceDir, "--ng", filepath.Join(binDir, "ng"))
			Expect(err).NotTo(HaveOccurred())

			Expect(filepath.Join(workspaceDir, "dist/shop/browser")).NotTo(BeAnExistingFile())
			Expect(filepath.Join(workspaceDir, "dist/shop/dist/shop/browser/index.html")).NotTo(BeAnExistingFile())
			Expect(readFile("dist/shop/dist/shop/browser/index.original.html")).To(Equal("<app-root></app-root>\n"))
			Expect(readFile("dist/shop/dist/shop/server/main.js")).To(Equal("exports.app = () => {}\n"))
			Expect(readFile("dist/shop/index.js")).To(ContainSubstring("require('./dist/shop/server/main').app()"))

			var pkg manifest.PackageJSON
			Expect(json.Unmarshal([]byte(readFile("dist/shop/package.json")), &pkg)).To(Succeed())
			Expect(pkg.Engines).To(HaveKeyWithValue("node", "20"))
			Expect(pkg.Dependencies).To(Equal(manifest.Dependencies{
				"firebase-admin":     "12.1.0",
				"firebase-functions": "4.9.0",
				"express":            "4.19.2",
			}))
		})

		It("fails when the hosting target is missing", func() {
			_, err := bbfire("deploy", "--workspace", workspaceDir, "--target", "stage", "--skip-build")
			Expect(err).To(MatchError(ContainSubstring(`Cannot find firebase project for hosting target "stage" in .firebaserc`)))
			Expect(filepath.Join(workspaceDir, "dist")).NotTo(BeADirectory())
		})

		It("fails when a build target fails", func() {
			_, err := bbfire("deploy", "--workspace", workspaceDir, "--ng", filepath.Join(binDir, "ng"), "--prerender")
			Expect(err).To(HaveOccurred())
			Expect(filepath.Join(workspaceDir, "dist")).NotTo(BeADirectory())
		})
	})

	Context("resolve", func() {
		It("prints the resolved paths", func() {
			out, err := bbfire("resolve", "--workspace", workspaceDir, "--output", "json")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchJSON(`{
				"project": "shop",
				"target": "shop",
				"hostingProject": "shop-prod",
				"staticOutputPath": "dist/shop/browser",
				"serverOutputPath": "dist/shop/server",
				"functionDir": "dist/shop",
				"dependencyPolicy": "allow-list[express]",
				"moves": [
					{"src": "dist/shop/browser", "dst": "dist/shop/dist/shop/browser"},
					{"src": "dist/shop/server", "dst": "dist/shop/dist/shop/server"}
				]
			}`))
		})
	})

	Context("generate", func() {
		It("prints the entry module", func() {
			out, err := bbfire("generate", "entrypoint", "dist/shop/server", "--function-name", "shop")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("exports.shop = functions.https.onRequest(app);"))
		})

		It("prints the package manifest", func() {
			out, err := bbfire("generate", "package-json", "--workspace", workspaceDir)
			Expect(err).NotTo(HaveOccurred())

			var pkg manifest.PackageJSON
			Expect(json.Unmarshal([]byte(out), &pkg)).To(Succeed())
			Expect(pkg.Main).To(Equal("index.js"))
			Expect(pkg.Dependencies).To(HaveKeyWithValue("express", "4.19.2"))
			Expect(pkg.DevDependencies).To(HaveKeyWithValue("firebase-functions-test", manifest.Latest))
		})
	})
})
