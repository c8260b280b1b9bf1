package ranking

// ApplyDiversity reorders a score-sorted list so no three consecutive items
// share an author or a content type. Offending items are deferred, in their
// original relative order, to the end of the output; nothing is dropped.
func ApplyDiversity(scored []ScoredPost) []ScoredPost {
	result := make([]ScoredPost, 0, len(scored))
	var deferred []ScoredPost

	for _, item := range scored {
		if len(result) >= 2 {
			last := result[len(result)-1]
			prev := result[len(result)-2]

			sameAuthor := last.Post.AuthorID == item.Post.AuthorID &&
				prev.Post.AuthorID == item.Post.AuthorID
			sameType := last.Post.PostType == item.Post.PostType &&
				prev.Post.PostType == item.Post.PostType

			if sameAuthor || sameType {
				deferred = append(deferred, item)
				continue
			}
		}
		result = append(result, item)
	}

	return append(result, deferred...)
}
