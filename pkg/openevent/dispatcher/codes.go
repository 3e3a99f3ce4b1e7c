package dispatcher

// Canonical event codes the vendor documents, per spec.md §4.4.
const (
	CodeAppChatMessageCreate = "kso.app_chat.message.create"
	CodeAppChatCreate        = "kso.app_chat.create"
	CodeGroupChatDelete      = "kso.xz.app.group_chat.delete"
	CodeGroupChatMemberUserCreate   = "kso.xz.app.group_chat.member.user.create"
	CodeGroupChatMemberUserDelete   = "kso.xz.app.group_chat.member.user.delete"
	CodeGroupChatMemberRobotCreate  = "kso.xz.app.group_chat.member.robot.create"
	CodeGroupChatMemberRobotDelete  = "kso.xz.app.group_chat.member.robot.delete"
)
