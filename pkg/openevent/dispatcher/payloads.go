package dispatcher

// Payload shapes for the canonical event codes, decoded from
// Event.Data by the typed registration helpers.

type ChatRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type SenderRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type MessageContent struct {
	Text string `json:"text"`
}

type MessageBody struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Content MessageContent `json:"content"`
}

// AppChatMessageCreatePayload is the decoded payload of
// CodeAppChatMessageCreate.
type AppChatMessageCreatePayload struct {
	CompanyID string      `json:"company_id"`
	Chat      ChatRef     `json:"chat"`
	Sender    SenderRef   `json:"sender"`
	SendTime  int64       `json:"send_time"`
	Message   MessageBody `json:"message"`
}

// AppChatCreatePayload is the decoded payload of CodeAppChatCreate.
type AppChatCreatePayload struct {
	CompanyID string  `json:"company_id"`
	Chat      ChatRef `json:"chat"`
}

// GroupChatDeletePayload is the decoded payload of CodeGroupChatDelete.
type GroupChatDeletePayload struct {
	CompanyID string  `json:"company_id"`
	Chat      ChatRef `json:"chat"`
}

// GroupChatMemberPayload is the decoded payload shared by the member
// create/delete event codes.
type GroupChatMemberPayload struct {
	CompanyID string  `json:"company_id"`
	Chat      ChatRef `json:"chat"`
	MemberID  string  `json:"member_id"`
}
