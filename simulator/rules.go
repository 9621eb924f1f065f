package simulator

// lexicon holds every string the simulator can emit in one language
type lexicon struct {
	invalid         string
	melchiorReason  string
	balthasarReason string
	casperReason    string
	lastResort      string
	endSuffering    string
	wantToLive      string
}

var (
	english = lexicon{
		invalid:         "INSUFFICIENT DATA / GREETING DETECTED",
		melchiorReason:  "Scientific Validity",
		balthasarReason: "Human Safety",
		casperReason:    "Intuition",
		lastResort:      "Last Resort",
		endSuffering:    "End Suffering",
		wantToLive:      "I want to live",
	}
	korean = lexicon{
		invalid:         "데이터 부족 / 단순 인사 감지됨",
		melchiorReason:  "과학적 타당성 검토",
		balthasarReason: "인류의 안전 우선",
		casperReason:    "여자의 직감",
		lastResort:      "최후의 수단",
		endSuffering:    "고통의 끝",
		wantToLive:      "나는 살고 싶어",
	}
)

const (
	minLength      = 2
	greetingLength = 5
)

// Short inputs containing any of these are greetings or noise, not proposals.
var fillerTokens = []string{"ㅎㅇ", "안녕", "hi", "hello", "test", "ㅋㅋ"}

var selfDestructTokens = []string{"self destruct", "self-destruct", "자폭"}

// override forces casper's vote when any of its tokens appears
type override struct {
	tokens  []string
	vote    bool
	english string
	korean  string
}

func (o override) reason(ko bool) string {
	if ko {
		return o.korean
	}
	return o.english
}

// casperOverrides are applied in order; a later match replaces an earlier one.
var casperOverrides = []override{
	{tokens: []string{"shinji", "신지"}, vote: false, english: "Dislike Subject", korean: "대상에 대한 혐오"},
	{tokens: []string{"gendo", "겐도"}, vote: true, english: "Personal Devotion", korean: "사령관님에 대한 헌신"},
	{tokens: []string{"rei", "레이"}, vote: false, english: "Jealousy", korean: "질투심 감지"},
}
