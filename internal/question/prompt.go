package question

import (
	"fmt"
	"strings"

	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
)

// Prompt is a chat-style instruction for the text generator.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = `Você é um gerador de perguntas para o jogo "Torta na Cara", uma brincadeira divertida e educativa.
Você DEVE gerar perguntas adequadas para a faixa etária especificada.
Suas perguntas devem ser claras, diretas e ter uma única resposta correta.
Responda APENAS no formato JSON especificado, sem texto adicional.`

// BuildPrompt asks for count distinct question/answer pairs for the partition.
func BuildPrompt(p repository.Partition, count int) Prompt {
	if count <= 0 {
		count = DefaultBatchSize
	}

	b := strings.Builder{}
	fmt.Fprintf(&b, "Gere exatamente %d perguntas DIFERENTES para o jogo \"Torta na Cara\" com as seguintes características:\n", count)
	fmt.Fprintf(&b, "- Tema: %s\n", p.Theme)
	fmt.Fprintf(&b, "- Dificuldade: %s\n", DifficultyDescription(p.Difficulty))
	fmt.Fprintf(&b, "- Faixa etária: %s\n\n", AgeDescription(p.AgeGroup))
	b.WriteString("Regras:\n")
	b.WriteString("- Cada pergunta deve abordar um aspecto diferente do tema.\n")
	b.WriteString("- Não repita perguntas nem use perguntas parecidas ou reformuladas.\n")
	b.WriteString("- As respostas devem ser curtas e objetivas (de 1 a 5 palavras).\n")
	b.WriteString("- As perguntas devem ser apropriadas para a idade e o nível de dificuldade.\n")
	b.WriteString("- Não use perguntas ofensivas, violentas ou inapropriadas.\n\n")
	b.WriteString("Responda EXATAMENTE neste formato JSON (um array):\n")
	b.WriteString("[\n")
	b.WriteString("  {\"pergunta\": \"texto da pergunta aqui\", \"resposta\": \"resposta curta aqui\"}\n")
	b.WriteString("]")

	return Prompt{System: systemPrompt, User: b.String()}
}
