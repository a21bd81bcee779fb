// Package narrator renders the monthly summary paragraph.
package narrator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/echoogrow/dashboard/metrics"
)

type InsufficientTopicsError struct {
	Have int
}

func (e *InsufficientTopicsError) Error() string {
	return fmt.Sprintf("narrative needs 2 top topics, have %d", e.Have)
}

// Part is one run of narrative text. Highlight marks substituted values.
type Part struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight,omitempty"`
}

type Narrative struct {
	Parts []Part `json:"parts"`
}

func (n Narrative) String() string {
	var b strings.Builder
	for _, p := range n.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

type Input struct {
	ChildName       string
	Summary         metrics.Summary
	ExemplarEmotion string
}

type field int

const (
	literal field = iota
	childName
	totalWords
	avgSentenceLength
	dominantEmotion
	firstTopic
	secondTopic
	exemplarEmotion
)

type segment struct {
	field field
	text  string
}

func lit(s string) segment { return segment{field: literal, text: s} }
func val(f field) segment  { return segment{field: f} }

var templates = map[string][]segment{
	"zh": {
		lit("本月，"), val(childName), lit(" 总共说了 "), val(totalWords), lit(" 个单词。 "),
		lit("他们的平均句子长度为 "), val(avgSentenceLength), lit(" 个单词， 比上个月有所增加，表明语言复杂性在提高。 "),
		lit("他们主要表达了 "), val(dominantEmotion), lit(" 的情绪， 偶尔在讨论 "), val(firstTopic),
		lit(" 时表现出 "), val(exemplarEmotion), lit(" 的情绪。 "),
		lit("讨论最多的主题是 "), val(firstTopic), lit(" 和 "), val(secondTopic), lit("。"),
	},
	"en": {
		lit("This month, "), val(childName), lit(" said "), val(totalWords), lit(" words in total. "),
		lit("Their average sentence length was "), val(avgSentenceLength), lit(" words, up from last month, a sign of growing language complexity. "),
		lit("They mostly expressed "), val(dominantEmotion), lit(", and occasionally showed "), val(exemplarEmotion),
		lit(" while talking about "), val(firstTopic), lit(". "),
		lit("The most discussed topics were "), val(firstTopic), lit(" and "), val(secondTopic), lit("."),
	},
}

// Languages lists the built-in template languages.
func Languages() []string { return []string{"zh", "en"} }

type Narrator struct {
	lang string
	tmpl []segment
}

func New(lang string) (*Narrator, error) {
	if lang == "" {
		lang = "zh"
	}
	tmpl, ok := templates[lang]
	if !ok {
		return nil, fmt.Errorf("narrator: no template for language %q", lang)
	}
	return &Narrator{lang: lang, tmpl: tmpl}, nil
}

func (n *Narrator) Language() string { return n.lang }

// Narrate substitutes the summary values into the template. Values are
// printed as stored; the average keeps its shortest decimal form.
func (n *Narrator) Narrate(in Input) (Narrative, error) {
	if len(in.Summary.TopTopics) < 2 {
		return Narrative{}, &InsufficientTopicsError{Have: len(in.Summary.TopTopics)}
	}
	values := map[field]string{
		childName:         in.ChildName,
		totalWords:        strconv.Itoa(in.Summary.TotalWords),
		avgSentenceLength: strconv.FormatFloat(in.Summary.AvgSentenceLength, 'f', -1, 64),
		dominantEmotion:   in.Summary.DominantEmotion,
		firstTopic:        in.Summary.TopTopics[0],
		secondTopic:       in.Summary.TopTopics[1],
		exemplarEmotion:   in.ExemplarEmotion,
	}

	parts := make([]Part, 0, len(n.tmpl))
	for _, s := range n.tmpl {
		if s.field == literal {
			parts = append(parts, Part{Text: s.text})
			continue
		}
		parts = append(parts, Part{Text: values[s.field], Highlight: true})
	}
	return Narrative{Parts: parts}, nil
}

// PickExemplar draws an emotion for narrative flavor from labels, avoiding
// dominant when any other label exists.
func PickExemplar(rnd *rand.Rand, labels []string, dominant string) string {
	var pool []string
	seen := map[string]struct{}{}
	for _, l := range labels {
		if l == dominant {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		pool = append(pool, l)
	}
	if len(pool) == 0 {
		return dominant
	}
	return pool[rnd.Intn(len(pool))]
}
