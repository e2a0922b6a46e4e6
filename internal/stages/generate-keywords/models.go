// internal/stages/generate-keywords/models.go
package generatekeywords

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Keywords []string `json:"keywords"`
}
