package catalog

// Built-in marriage readiness questionnaire, catalog version 3.
// Version 1 used flat weights; version 2 introduced per-question weights.
// Stored results from earlier versions are refreshed by the recalculation
// driver, so edits here must bump the version constant.

// DefaultVersion is the active revision of the built-in catalog.
const DefaultVersion = 3

func mc(id int, section, subsection, text string, weight int, options ...string) *Question {
	return &Question{ID: id, Section: section, Subsection: subsection, Type: TypeMultipleChoice, Text: text, Options: options, Weight: weight}
}

func decl(id int, section, subsection, text string, weight int) *Question {
	return &Question{
		ID: id, Section: section, Subsection: subsection, Type: TypeDeclaration,
		Text: text, Weight: weight,
		Options: []string{text, AntithesisMarker},
	}
}

func input(id int, section, subsection, text string) *Question {
	return &Question{ID: id, Section: section, Subsection: subsection, Type: TypeInput, Text: text}
}

var freq = []string{"Never", "Rarely", "Sometimes", "Often", "Always"}
var agree = []string{"Strongly disagree", "Disagree", "Neutral", "Agree", "Strongly agree"}

// Default returns the built-in catalog. It panics on a malformed question
// table, which is a programming error rather than a runtime condition.
func Default() *Catalog {
	c, err := New(DefaultVersion, defaultQuestions())
	if err != nil {
		panic("catalog: built-in question table invalid: " + err.Error())
	}
	return c
}

func defaultQuestions() []*Question {
	return []*Question{
		// Your Faith Life
		mc(1, SectionFaith, "Practice", "How often do you pray together as a couple?", 6, freq...),
		mc(2, SectionFaith, "Practice", "How often do you attend a worship service?", 5, freq...),
		mc(3, SectionFaith, "Conviction", "My faith shapes my everyday decisions.", 5, agree...),
		decl(4, SectionFaith, "Conviction", "I commit to making our shared faith the foundation of our marriage.", 10),
		mc(5, SectionFaith, "Community", "We are involved in a faith community we both trust.", 5, agree...),
		decl(6, SectionFaith, "Practice", "I commit to praying for my future spouse daily.", 8),
		mc(7, SectionFaith, "Alignment", "My partner and I share the same core beliefs.", 6, agree...),

		// Communication & Conflict
		mc(8, SectionCommunication, "Listening", "When my partner is upset, I listen before offering solutions.", 5, freq...),
		mc(9, SectionCommunication, "Conflict", "How often do disagreements escalate into shouting?", 5, "Always", "Often", "Sometimes", "Rarely", "Never"),
		decl(10, SectionCommunication, "Repair", "I commit to resolving conflict before the day ends whenever possible.", 10),
		mc(11, SectionCommunication, "Honesty", "I can raise difficult topics with my partner without fear.", 6, agree...),
		mc(12, SectionCommunication, "Repair", "After an argument, we talk through what went wrong.", 5, freq...),
		mc(13, SectionCommunication, "Listening", "I feel heard and understood by my partner.", 5, agree...),
		decl(14, SectionCommunication, "Honesty", "I commit to complete honesty with my spouse, even when it is uncomfortable.", 10),
		mc(15, SectionCommunication, "Criticism", "I can receive correction from my partner without resentment.", 5, agree...),

		// Money & Stewardship
		mc(16, SectionMoney, "Budgeting", "We keep and review a written budget.", 5, freq...),
		mc(17, SectionMoney, "Debt", "How comfortable are you with carrying consumer debt?", 5,
			"Very comfortable", "Somewhat comfortable", "Neutral", "Somewhat uncomfortable", "Very uncomfortable"),
		decl(18, SectionMoney, "Transparency", "I commit to full financial transparency with my spouse.", 10),
		mc(19, SectionMoney, "Giving", "Generous giving is a priority in my finances.", 5, agree...),
		mc(20, SectionMoney, "Planning", "We have discussed long-term financial goals together.", 6, agree...),
		mc(21, SectionMoney, "Spending", "My partner and I agree on what counts as a major purchase.", 5, agree...),
		decl(22, SectionMoney, "Stewardship", "I commit to making large financial decisions jointly.", 8),

		// Family & Parenting
		mc(23, SectionFamily, "Children", "My partner and I agree on whether to have children.", 8, agree...),
		mc(24, SectionFamily, "Parenting", "We agree on how children should be disciplined.", 6, agree...),
		mc(25, SectionFamily, "In-laws", "I have a healthy relationship with my partner's family.", 5, agree...),
		decl(26, SectionFamily, "Boundaries", "I commit to putting my spouse before extended family in decision making.", 10),
		mc(27, SectionFamily, "Traditions", "We have discussed which family traditions we will keep.", 5, agree...),
		mc(28, SectionFamily, "In-laws", "How often does extended family influence decisions that should be ours alone?", 5,
			"Always", "Often", "Sometimes", "Rarely", "Never"),
		input(29, SectionFamily, "Children", "Describe the family culture you hope to build together."),

		// Intimacy & Affection
		mc(30, SectionIntimacy, "Affection", "I regularly express affection in ways my partner values.", 5, freq...),
		mc(31, SectionIntimacy, "Expectations", "We have talked openly about our expectations for physical intimacy.", 6, agree...),
		decl(32, SectionIntimacy, "Faithfulness", "I commit to complete faithfulness to my spouse in thought and action.", 12),
		mc(33, SectionIntimacy, "Emotional", "I share my inner life with my partner, not just logistics.", 5, agree...),
		mc(34, SectionIntimacy, "Affection", "My partner knows what makes me feel loved.", 5, agree...),
		decl(35, SectionIntimacy, "Priority", "I commit to guarding regular time for just the two of us.", 8),

		// Roles & Expectations
		mc(36, SectionRoles, "Household", "We agree on how household responsibilities will be divided.", 5, agree...),
		mc(37, SectionRoles, "Career", "We agree on how careers and relocation decisions will be weighed.", 6, agree...),
		mc(38, SectionRoles, "Decisions", "When we disagree, we have a settled way of reaching a decision.", 6, agree...),
		decl(39, SectionRoles, "Partnership", "I commit to treating my spouse as a full partner in every major decision.", 10),
		mc(40, SectionRoles, "Expectations", "I understand what my partner expects daily married life to look like.", 5, agree...),
		input(41, SectionRoles, "Expectations", "What does a typical week of married life look like in your mind?"),

		// Character & Emotional Health
		mc(42, SectionCharacter, "Temper", "How often do you lose your temper in ways you later regret?", 5,
			"Always", "Often", "Sometimes", "Rarely", "Never"),
		mc(43, SectionCharacter, "Forgiveness", "I forgive quickly and do not keep score.", 5, agree...),
		mc(44, SectionCharacter, "Habits", "I have habits I am hiding from my partner.", 6,
			"Strongly agree", "Agree", "Neutral", "Disagree", "Strongly disagree"),
		decl(45, SectionCharacter, "Growth", "I commit to seeking help (counsel, mentorship) when our marriage needs it.", 10),
		mc(46, SectionCharacter, "Stability", "I manage stress without taking it out on those close to me.", 5, freq...),
		mc(47, SectionCharacter, "Past", "I have dealt honestly with significant hurts from my past.", 6, agree...),
		decl(48, SectionCharacter, "Integrity", "I am the same person in private that I am in public.", 8),
	}
}
