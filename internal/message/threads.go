package message

// BuildThreads collapses a newest-first message list into one Thread per
// (artwork, counterpart) pair, keeping only the most recent message of each.
// Rows must already be ordered by created_at descending; the first row seen
// for a key wins.
func BuildThreads(userID string, rows []InboxRow) []Thread {
	type key struct{ artworkID, otherID string }

	seen := make(map[key]bool, len(rows))
	out := make([]Thread, 0, len(rows))

	for _, row := range rows {
		other := row.SenderID
		otherName := row.SenderUsername
		if row.SenderID == userID {
			other = row.ReceiverID
			otherName = row.ReceiverUsername
		}

		k := key{row.ArtworkID, other}
		if seen[k] {
			continue
		}
		seen[k] = true

		out = append(out, Thread{
			ArtworkID:     row.ArtworkID,
			OtherUserID:   other,
			ArtworkTitle:  row.ArtworkTitle,
			OtherUsername: otherName,
			LatestMessage: row.Content,
			UpdatedAt:     row.CreatedAt,
		})
	}
	return out
}
