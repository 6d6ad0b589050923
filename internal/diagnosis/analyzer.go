package diagnosis

import "fmt"

// WrongAnswer is the analysis of one wrongly answered question.
type WrongAnswer struct {
	QuestionIndex int    `json:"questionIndex"`
	Topic         string `json:"topic"`
	ErrorType     string `json:"errorType"`
	Cause         string `json:"cause"`
	Fix           string `json:"fix"`
	Reference     string `json:"reference"`
}

// AnalyzeWrongAnswers assigns a topic, error type and reference to each
// wrong question index by round-robin over topics, the taxonomy and the
// reference list. The result has exactly one entry per index, in order.
func AnalyzeWrongAnswers(indices []int, topics []string) []WrongAnswer {
	out := make([]WrongAnswer, 0, len(indices))
	for i, idx := range indices {
		et := errorTypeAt(i)
		topic := "general"
		if len(topics) > 0 {
			topic = topics[i%len(topics)]
		}
		out = append(out, WrongAnswer{
			QuestionIndex: idx,
			Topic:         topic,
			ErrorType:     et.Label,
			Cause:         et.Cause,
			Fix:           et.Fix,
			Reference:     fmt.Sprintf("%s (%s)", references[i%len(references)], topic),
		})
	}
	return out
}

// Topics returns the topic of each analysis, in order and with repeats.
func Topics(analyses []WrongAnswer) []string {
	out := make([]string, len(analyses))
	for i, a := range analyses {
		out[i] = a.Topic
	}
	return out
}
