package models

type GenerateForm struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

type JokeForm struct {
	Username string `json:"username" validate:"omitempty,max=64"`
}

type GenerateRes struct {
	GeneratedText string `json:"generatedText"`
	APICalls      int    `json:"apiCalls"`
}
