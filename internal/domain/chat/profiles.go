package chat

// Profile describes one selectable model configuration. The profile name
// doubles as the model identifier passed to the LLM runtime.
type Profile struct {
	Name                string    `json:"name"`
	MarkdownDescription string    `json:"markdownDescription"`
	Icon                string    `json:"icon"`
	Starters            []Starter `json:"starters"`
}

// Starter is a canned opening prompt shown in the UI.
type Starter struct {
	Label   string `json:"label"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
}

// Catalog returns the available chat profiles.
func Catalog() []Profile {
	starters := Starters()
	return []Profile{
		{
			Name:                "gpt-oss:120b-cloud",
			MarkdownDescription: "The underlying LLM model is **GPT-OSS**.",
			Icon:                "public/model/openai.svg",
			Starters:            starters,
		},
		{
			Name:                "deepseek-v3.1:671b-cloud",
			MarkdownDescription: "The underlying LLM model is **DeepSeek-V3.1**.",
			Icon:                "public/model/deepseek.svg",
			Starters:            starters,
		},
		{
			Name:                "qwen3-vl:235b-cloud",
			MarkdownDescription: "The underlying LLM model is **Qwen3-vl**.",
			Icon:                "public/model/qwen.svg",
			Starters:            starters,
		},
		{
			Name:                "kimi-k2:1t-cloud",
			MarkdownDescription: "The underlying LLM model is **Kimi-K2**.",
			Icon:                "public/model/kimi.svg",
			Starters:            starters,
		},
		{
			Name:                "glm-4.6:cloud",
			MarkdownDescription: "The underlying LLM model is **Glm-4.6**.",
			Icon:                "public/model/zai.svg",
			Starters:            starters,
		},
		{
			Name:                "minimax-m2:cloud",
			MarkdownDescription: "The underlying LLM model is **Minimax-m2**.",
			Icon:                "public/model/minimax.svg",
			Starters:            starters,
		},
		{
			Name:                "gemini-3-pro-preview",
			MarkdownDescription: "The underlying LLM model is **Gemini 3 Pro**.",
			Icon:                "public/model/gemini.svg",
			Starters:            starters,
		},
	}
}

// Starters returns the canned conversation openers.
func Starters() []Starter {
	return []Starter{
		{
			Label:   "Learn machine learning",
			Message: "Recommend some resources to learn about machine learning",
			Icon:    "/public/starters/human-learn.svg",
		},
		{
			Label:   "Search a web page",
			Message: "Summarize this LangChain documentation page in 3 lines https://python.langchain.com/docs/tutorials/summarization/",
			Icon:    "/public/starters/search-globe.svg",
		},
		{
			Label:   "Write some code",
			Message: "Write a script to automate sending daily email reports in Python, and walk me through how I would set it up",
			Icon:    "/public/starters/python.svg",
		},
	}
}

// ModelForProfile resolves a profile name to its model identifier.
func ModelForProfile(name string) (string, bool) {
	for _, profile := range Catalog() {
		if profile.Name == name {
			return profile.Name, true
		}
	}
	return "", false
}
