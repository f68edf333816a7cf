package extract

import "strings"

// englishStopwords are function words ignored when ranking topics.
var englishStopwords = toSet(`
a about above after again against all also am an and any are aren't as at
be because been before being below between both but by can cannot could
couldn't did didn't do does doesn't doing don't down during each either
else ever every few for from further get got had hadn't has hasn't have
haven't having he he'd he'll he's her here here's hers herself him himself
his how how's however i i'd i'll i'm i've if in into is isn't it it's its
itself just let's may me might more most must mustn't my myself need no nor
not now of off often on once only or other ought our ours ourselves out
over own per quite rather really same shall shan't she she'd she'll she's
should shouldn't since so some still such than that that's the their
theirs them themselves then there there's therefore these they they'd
they'll they're they've this those though through thus to too under until
up upon us very via was wasn't we we'd we'll we're we've were weren't what
what's when when's where where's whether which while who who's whom whose
why why's will with within without won't would wouldn't yes yet you you'd
you'll you're you've your yours yourself yourselves
okay ok yeah um uh hmm like well right actually basically literally
`)

// genericTerms are meeting-jargon words that never make a useful topic.
var genericTerms = toSet(`
faculty member members prepared preparation exam exams examination
examinations assessment assessments meeting meetings discussion
discussions topic topics person people student students teacher teachers
thing things way ways time times day days year years work works part parts
point points
`)

// personStoplist holds capitalized words that name-recognition heuristics
// often mistake for people.
var personStoplist = toSet(`
technova whisper ai college meeting fest event
`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}
