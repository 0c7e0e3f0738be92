package problemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/worksheet"
)

const mathSystemPrompt = `You write arithmetic drill problems for Korean elementary school worksheets.

Rules:
- Follow the digit and operation rules exactly.
- For subtraction the first number must be greater than or equal to the second, so results are never negative.
- Use the "×" symbol for multiplication.
- Give the exact answer for each problem.
- Vary the problems; do not repeat the same pair of numbers.`

const hanjaSystemPrompt = `You write Chinese character (Hanja) study items for the South Korean Hanja proficiency test.

Rules:
- Use characters that belong to the requested grade.
- Meanings (뜻) and readings (음) are in Korean.
- The answer is the meaning followed by the reading, e.g. "메 산".
- For multiple choice give exactly 4 options in the same "뜻 음" form, one of them equal to the answer.
- For other types return an empty options array.
- Do not repeat characters.`

const englishSystemPrompt = `You write English study items for Korean elementary school students.

Rules for multiple choice (vocabulary, sentence completion):
- The options array contains exactly 4 choices.
- The answer matches one of the options exactly.
- Distractors are plausible but clearly incorrect.

Other rules:
- The answer is never an option number such as "1"; it is the actual correct text.
- For translation return an empty options array.
- Ensure high variety; do not repeat words.`

var digitRules = map[arith.DigitMode]string{
	arith.OneOne:     "Both numbers must be 1 digit (1-9).",
	arith.OneTwo:     "One number must be 1 digit (1-9) and the other 2 digits (10-99).",
	arith.TwoTwo:     "Both numbers must be 2 digits (10-99).",
	arith.TwoThree:   "One number must be 2 digits (10-99) and the other 3 digits (100-999).",
	arith.ThreeThree: "Both numbers must be 3 digits (100-999).",
}

var operationRules = map[arith.Operation]string{
	arith.Addition:       "Addition only (+).",
	arith.Subtraction:    "Subtraction only (-).",
	arith.Multiplication: "Multiplication only (×).",
	arith.Mixed:          "A mix of addition and subtraction (+, -).",
}

func mathUserMessage(s worksheet.MathSettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d math problems.\n", s.Count)
	fmt.Fprintf(&b, "Digits: %s\n", digitRules[s.Digits])
	fmt.Fprintf(&b, "Operation: %s\n", operationRules[s.Operation])
	return b.String()
}

var hanjaTypeRules = map[worksheet.HanjaType]string{
	worksheet.HanjaMultipleChoice:  "Multiple choice (객관식). Give a character and 4 options for its meaning and reading (뜻과 음).",
	worksheet.HanjaShortAnswer:     "Short answer (주관식). Give a character; the student writes its meaning and reading (뜻과 음).",
	worksheet.HanjaWritingPractice: "Writing practice (쓰기연습). Give the character, meaning and reading for tracing.",
}

func hanjaUserMessage(s worksheet.HanjaSettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d Hanja study items.\n", s.Count)
	fmt.Fprintf(&b, "Grade: %s\n", s.Grade.Label())
	fmt.Fprintf(&b, "Type: %s\n", hanjaTypeRules[s.Type])
	return b.String()
}

var englishTypeRules = map[worksheet.EnglishType]string{
	worksheet.EnglishVocabulary:         "Vocabulary quiz. Given an English word, provide 4 Korean options. The answer is the full text of the correct Korean meaning.",
	worksheet.EnglishSentenceCompletion: "Sentence completion. A simple sentence with (____) and 4 options. The answer is the English word that fills the blank.",
	worksheet.EnglishTranslation:        "Basic translation. A Korean sentence to translate. The answer is the correct English sentence.",
}

var englishGradeLevels = map[worksheet.EnglishGrade]string{
	worksheet.EnglishGrade2: "Very basic English for 2nd graders (colors, animals, family, simple greetings, simple verbs).",
	worksheet.EnglishGrade3: "Basic English for 3rd graders (daily routines, hobbies, simple sentences, common objects).",
}

func englishUserMessage(s worksheet.EnglishSettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d unique English study items.\n", s.Count)
	fmt.Fprintf(&b, "Grade: %s\n", s.Grade)
	fmt.Fprintf(&b, "Type: %s\n", englishTypeRules[s.Type])
	fmt.Fprintf(&b, "Level: %s\n", englishGradeLevels[s.Grade])
	return b.String()
}
