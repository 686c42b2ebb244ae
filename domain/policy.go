package domain

// Access policy for posts. Pure functions of (post snapshot, optional actor),
// kept apart from storage and transport so policy changes stay local.

// CanView reports whether the actor may read the post.
// Approved posts are public; otherwise only the author and
// privileged roles see it. Deleted posts must be filtered out
// before this is consulted.
func CanView(post Post, actor *Actor) bool {
	if post.Status == StatusApproved {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.ID == post.AuthorID {
		return true
	}
	switch actor.Role {
	case RoleAdmin, RoleApprover:
		return true
	case RoleUser:
		return false
	}
	return false
}

// CanEdit reports whether the actor may mutate the post's payload.
// Admins always can; the author can while the post is not yet approved.
func CanEdit(post Post, actor Actor) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleUser, RoleApprover:
		return actor.ID == post.AuthorID && post.Status != StatusApproved
	}
	return false
}

// CanDelete reports whether the actor may soft-delete the post.
func CanDelete(post Post, actor Actor) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleUser, RoleApprover:
		return actor.ID == post.AuthorID
	}
	return false
}

// CanModerate reports whether the actor may approve or reject posts.
func CanModerate(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleApprover:
		return true
	case RoleUser:
		return false
	}
	return false
}
