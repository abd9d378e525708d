package ui

// Texts shown in alerts and confirmations.
const (
	MsgSignInToLike    = "Please sign in to like projects!"
	MsgSignInToSave    = "Please sign in to save projects!"
	MsgSignInToComment = "Please sign in to comment!"
	MsgLikeFailed      = "Failed to like project. Please try again."
	MsgSaveFailed      = "Failed to save project. Please try again."
	MsgUnsaveFailed    = "Failed to remove project from saved. Please try again."
	MsgCommentFailed   = "Failed to add comment. Please try again."
	MsgDeleteFailed    = "Failed to delete project. Please try again."
	MsgDeleted         = "Project deleted successfully!"
	MsgConfirmDelete   = "Are you sure you want to delete this project? This action cannot be undone."
)
