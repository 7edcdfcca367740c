package store

import "fmt"

// Key layout. Entity IDs are UUIDv7, so records under a common prefix
// iterate in creation order.
//
//	user:<id>                           User
//	post:<id>                           Post
//	comment:<id>                        Comment
//	postcomment:<postID>:<commentID>    index, post -> comments
//	like:<postID>:<userID>              Like (existence = liked)
//	follow:<followerID>:<followingID>   Follow
//	follower:<followingID>:<followerID> index, user -> followers
//	conv:<id>                           Conversation
//	convpair:<loID>:<hiID>              index, unordered pair -> conv ID
//	msg:<convID>:<msgID>                Message
//	notif:<recipientID>:<notifID>       Notification

func userKey(id string) []byte { return []byte("user:" + id) }

func postKey(id string) []byte { return []byte("post:" + id) }

func commentKey(id string) []byte { return []byte("comment:" + id) }

func postCommentKey(postID, commentID string) []byte {
	return []byte(fmt.Sprintf("postcomment:%s:%s", postID, commentID))
}

func postCommentPrefix(postID string) []byte {
	return []byte("postcomment:" + postID + ":")
}

func likeKey(postID, userID string) []byte {
	return []byte(fmt.Sprintf("like:%s:%s", postID, userID))
}

func likePrefix(postID string) []byte { return []byte("like:" + postID + ":") }

func followKey(followerID, followingID string) []byte {
	return []byte(fmt.Sprintf("follow:%s:%s", followerID, followingID))
}

func followerKey(followingID, followerID string) []byte {
	return []byte(fmt.Sprintf("follower:%s:%s", followingID, followerID))
}

func followerPrefix(followingID string) []byte {
	return []byte("follower:" + followingID + ":")
}

func convKey(id string) []byte { return []byte("conv:" + id) }

// convPairKey orders the two participant IDs so both directions of a pair
// resolve to the same key.
func convPairKey(a, b string) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte(fmt.Sprintf("convpair:%s:%s", a, b))
}

func msgKey(convID, msgID string) []byte {
	return []byte(fmt.Sprintf("msg:%s:%s", convID, msgID))
}

func msgPrefix(convID string) []byte { return []byte("msg:" + convID + ":") }

func notifKey(recipientID, notifID string) []byte {
	return []byte(fmt.Sprintf("notif:%s:%s", recipientID, notifID))
}

func notifPrefix(recipientID string) []byte {
	return []byte("notif:" + recipientID + ":")
}
