package settings

import "sort"

// ChatFormatChatML is the preferred chat-formatting mode.
const ChatFormatChatML = "chatml"

// chatFormats maps chat-format names to llama-server built-in template names.
var chatFormats = map[string]string{
	"chatml":           "chatml",
	"qwen":             "chatml",
	"llama-2":          "llama2",
	"llama-3":          "llama3",
	"mistral-instruct": "mistral-v1",
	"zephyr":           "zephyr",
	"vicuna":           "vicuna",
	"gemma":            "gemma",
	"openchat":         "openchat",
	"chatglm3":         "chatglm3",
	"phi-3":            "phi3",
	"deepseek":         "deepseek",
	"command-r":        "command-r",
}

// LookupChatFormat returns the runtime template for a chat format.
func LookupChatFormat(name string) (template string, ok bool) {
	template, ok = chatFormats[name]
	return template, ok
}

// ChatFormats lists the registered chat-format names in sorted order.
func ChatFormats() []string {
	out := make([]string, 0, len(chatFormats))
	for k := range chatFormats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
