package diagnosis

// seedErrorTypes is the error taxonomy.
var seedErrorTypes = []ErrorType{
	{
		ID:    "concept-gap",
		Label: "concept gap",
		Cause: "The underlying idea was not yet understood",
		Fix:   "Re-read the core explanation and restate it in your own words",
	},
	{
		ID:    "calculation-slip",
		Label: "calculation slip",
		Cause: "A step was executed carelessly despite knowing the method",
		Fix:   "Redo the problem slowly and check each intermediate step",
	},
	{
		ID:    "misreading",
		Label: "misreading",
		Cause: "The question or its conditions were misread",
		Fix:   "Underline what is asked before answering",
	},
	{
		ID:    "time-pressure",
		Label: "time pressure",
		Cause: "The answer was rushed to save time",
		Fix:   "Practice a similar item untimed, then with a relaxed limit",
	},
	{
		ID:    "application-gap",
		Label: "application gap",
		Cause: "The concept is known but was not applied to a new situation",
		Fix:   "Work two variations of the problem with changed conditions",
	},
}

// references are study pointers assigned round-robin to wrong answers.
var references = []string{
	"course notes: key definitions",
	"textbook: worked examples",
	"practice set: similar problems",
	"summary sheet: common mistakes",
}
