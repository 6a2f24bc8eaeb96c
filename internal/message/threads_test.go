package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func row(id, artworkID, sender, receiver, content string, at time.Time) InboxRow {
	return InboxRow{
		Message: Message{
			ID:         id,
			ArtworkID:  artworkID,
			SenderID:   sender,
			ReceiverID: receiver,
			Content:    content,
			CreatedAt:  at,
		},
		ArtworkTitle:     "Blue Interior",
		ArtistID:         receiver,
		SenderUsername:   "u-" + sender,
		ReceiverUsername: "u-" + receiver,
	}
}

func TestBuildThreads_CollapsesSamePair(t *testing.T) {
	now := time.Now()

	// newest first, as the repo returns them
	rows := []InboxRow{
		row("m2", "art1", "buyer", "artist", "second message", now),
		row("m1", "art1", "buyer", "artist", "first message", now.Add(-time.Hour)),
	}

	threads := BuildThreads("buyer", rows)
	require.Len(t, threads, 1)
	require.Equal(t, "art1", threads[0].ArtworkID)
	require.Equal(t, "artist", threads[0].OtherUserID)
	require.Equal(t, "second message", threads[0].LatestMessage)
	require.Equal(t, now, threads[0].UpdatedAt)
}

func TestBuildThreads_CounterpartDependsOnDirection(t *testing.T) {
	now := time.Now()
	rows := []InboxRow{
		row("m1", "art1", "buyer", "artist", "hola", now),
	}

	asBuyer := BuildThreads("buyer", rows)
	require.Equal(t, "artist", asBuyer[0].OtherUserID)
	require.Equal(t, "u-artist", asBuyer[0].OtherUsername)

	asArtist := BuildThreads("artist", rows)
	require.Equal(t, "buyer", asArtist[0].OtherUserID)
	require.Equal(t, "u-buyer", asArtist[0].OtherUsername)
}

func TestBuildThreads_SeparatesByArtworkAndUser(t *testing.T) {
	now := time.Now()
	rows := []InboxRow{
		row("m3", "art2", "buyer", "artist", "about art2", now),
		row("m2", "art1", "otherbuyer", "artist", "from someone else", now.Add(-time.Minute)),
		row("m1", "art1", "buyer", "artist", "about art1", now.Add(-time.Hour)),
	}

	threads := BuildThreads("artist", rows)
	require.Len(t, threads, 3)
}

func TestBuildThreads_Empty(t *testing.T) {
	require.Empty(t, BuildThreads("anyone", nil))
}
