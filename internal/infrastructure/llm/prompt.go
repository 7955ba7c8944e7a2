package llm

import (
	"fmt"
	"strings"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/knowledge"
)

// BuildPrompt собирает закрытый список классов из справочника.
// Модель должна выбрать ровно один класс или ответить «ничего не найдено».
func BuildPrompt(kb *knowledge.Base) string {
	var b strings.Builder

	b.WriteString("You are a plant pathologist. Look at the leaf in the photo and pick exactly ONE class from the list below.\n")
	b.WriteString("Check both sides of the leaf, the lesion colour and shape, and signs of insects or feeding damage.\n\n")

	writeGroup(&b, "Diseases", kb.LabelsOf(entity.CategoryDisease))
	writeGroup(&b, "Pests", kb.LabelsOf(entity.CategoryPest))

	fmt.Fprintf(&b, "If the leaf looks healthy, the key evidence is not visible, or several classes fit equally well, answer %q.\n\n", entity.NoFindingLabel)
	b.WriteString("Reply with a single JSON object and nothing else:\n")
	b.WriteString(`{"class": "<exact class name>", "confidence": "very_high|high|medium|low|very_low", "reasoning": "<one sentence>"}`)
	b.WriteString("\n")

	return b.String()
}

func writeGroup(b *strings.Builder, title string, labels []string) {
	if len(labels) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, l := range labels {
		fmt.Fprintf(b, "- %s\n", l)
	}
	b.WriteString("\n")
}
