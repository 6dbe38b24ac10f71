package dialogue

import (
	"regexp"
	"strings"
)

var (
	spaceRe        = regexp.MustCompile(`\s+`)
	parentheticRe  = regexp.MustCompile(`\([^)]{1,120}\)`)
	bracketRe      = regexp.MustCompile(`\[[^\]]{1,120}\]`)
	actionRe       = regexp.MustCompile(`\*[^*]{1,80}\*`)
	leadingStageRe = regexp.MustCompile(`^\s*[\[(][^\])]*[\])]\s*`)
)

type contraction struct {
	re   *regexp.Regexp
	with string
}

// Longer forms come first so they win over their subsets.
var contractions = func() []contraction {
	pairs := [][2]string{
		{"would not", "wouldn't"},
		{"could not", "couldn't"},
		{"should not", "shouldn't"},
		{"will not", "won't"},
		{"did not", "didn't"},
		{"have not", "haven't"},
		{"has not", "hasn't"},
		{"do not", "don't"},
		{"cannot", "can't"},
		{"I am", "I'm"},
		{"I will", "I'll"},
		{"I would", "I'd"},
		{"I have", "I've"},
		{"you are", "you're"},
		{"you will", "you'll"},
		{"you would", "you'd"},
		{"you have", "you've"},
		{"they are", "they're"},
		{"we are", "we're"},
		{"it is", "it's"},
		{"that is", "that's"},
		{"there is", "there's"},
		{"here is", "here's"},
		{"what is", "what's"},
		{"let us", "let's"},
		{"he is", "he's"},
		{"she is", "she's"},
	}
	out := make([]contraction, len(pairs))
	for i, p := range pairs {
		out[i] = contraction{re: regexp.MustCompile(`(?i)\b` + p[0] + `\b`), with: p[1]}
	}
	return out
}()

// Humanize turns model output into something that sounds right when spoken:
// one line, no stage directions and contracted forms.
func Humanize(text string) string {
	v := collapse(text)
	if v == "" {
		return ""
	}

	v = parentheticRe.ReplaceAllString(v, "")
	v = bracketRe.ReplaceAllString(v, "")
	v = actionRe.ReplaceAllString(v, "")
	v = leadingStageRe.ReplaceAllString(v, "")
	v = collapse(v)

	for _, c := range contractions {
		v = c.re.ReplaceAllStringFunc(v, c.replace)
	}
	return strings.TrimSpace(v)
}

// replace keeps a leading capital so sentence starts stay capitalized.
func (c contraction) replace(match string) string {
	if match[0] >= 'A' && match[0] <= 'Z' {
		return strings.ToUpper(c.with[:1]) + c.with[1:]
	}
	return c.with
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
