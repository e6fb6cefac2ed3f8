package yatgbot

import (
	"context"

	"github.com/gotd/td/tg"
)

// Member statuses.
const (
	MemberStatusCreator       = "creator"
	MemberStatusAdministrator = "administrator"
	MemberStatusMember        = "member"
	MemberStatusRestricted    = "restricted"
	MemberStatusLeft          = "left"
	MemberStatusKicked        = "kicked"
)

type ChatAdministratorRights struct {
	IsAnonymous         bool `json:"is_anonymous"`
	CanManageChat       bool `json:"can_manage_chat"`
	CanDeleteMessages   bool `json:"can_delete_messages"`
	CanManageVideoChats bool `json:"can_manage_video_chats"`
	CanRestrictMembers  bool `json:"can_restrict_members"`
	CanPromoteMembers   bool `json:"can_promote_members"`
	CanChangeInfo       bool `json:"can_change_info"`
	CanInviteUsers      bool `json:"can_invite_users"`
	CanPostStories      bool `json:"can_post_stories"`
	CanEditStories      bool `json:"can_edit_stories"`
	CanDeleteStories    bool `json:"can_delete_stories"`
	CanPostMessages     bool `json:"can_post_messages,omitempty"`
	CanEditMessages     bool `json:"can_edit_messages,omitempty"`
	CanPinMessages      bool `json:"can_pin_messages,omitempty"`
	CanManageTopics     bool `json:"can_manage_topics,omitempty"`
}

type ChatPermissions struct {
	CanSendMessages       bool `json:"can_send_messages"`
	CanSendAudios         bool `json:"can_send_audios"`
	CanSendDocuments      bool `json:"can_send_documents"`
	CanSendPhotos         bool `json:"can_send_photos"`
	CanSendVideos         bool `json:"can_send_videos"`
	CanSendVideoNotes     bool `json:"can_send_video_notes"`
	CanSendVoiceNotes     bool `json:"can_send_voice_notes"`
	CanSendPolls          bool `json:"can_send_polls"`
	CanSendOtherMessages  bool `json:"can_send_other_messages"`
	CanAddWebPagePreviews bool `json:"can_add_web_page_previews"`
	CanChangeInfo         bool `json:"can_change_info"`
	CanInviteUsers        bool `json:"can_invite_users"`
	CanPinMessages        bool `json:"can_pin_messages"`
	CanManageTopics       bool `json:"can_manage_topics"`
}

// ChatMember is the state of one user in a chat. Status selects which of the
// optional fields are meaningful: administrator rights for creators and
// administrators, permissions for restricted members.
type ChatMember struct {
	Status      string `json:"status"`
	User        *User  `json:"user"`
	CustomTitle string `json:"custom_title,omitempty"`
	CanBeEdited bool   `json:"can_be_edited,omitempty"`
	IsMember    bool   `json:"is_member,omitempty"`
	UntilDate   int64  `json:"until_date,omitempty"`

	*ChatAdministratorRights
	Permissions *ChatPermissions `json:"permissions,omitempty"`
}

type ChatInviteLink struct {
	InviteLink              string `json:"invite_link"`
	Creator                 *User  `json:"creator"`
	CreatesJoinRequest      bool   `json:"creates_join_request"`
	IsPrimary               bool   `json:"is_primary"`
	IsRevoked               bool   `json:"is_revoked"`
	Name                    string `json:"name,omitempty"`
	ExpireDate              int64  `json:"expire_date,omitempty"`
	MemberLimit             int    `json:"member_limit,omitempty"`
	PendingJoinRequestCount int    `json:"pending_join_request_count,omitempty"`
}

// ChatMemberUpdated reports a change of one member's status.
type ChatMemberUpdated struct {
	Chat                    *Chat           `json:"chat"`
	From                    *User           `json:"from"`
	Date                    int64           `json:"date"`
	OldChatMember           ChatMember      `json:"old_chat_member"`
	NewChatMember           ChatMember      `json:"new_chat_member"`
	InviteLink              *ChatInviteLink `json:"invite_link,omitempty"`
	ViaChatFolderInviteLink bool            `json:"via_chat_folder_invite_link,omitempty"`
}

// memberRoute tells whether a change of userID is about the bot itself. It
// only needs raw IDs, so it runs before anything is resolved.
func (b *Bot) memberRoute(userID int64) UpdateType {
	if userID == b.selfID {
		return UpdateTypeMyChatMember
	}

	return UpdateTypeChatMember
}

func (b *Bot) normalizeChannelParticipant(
	ctx context.Context,
	u *tg.UpdateChannelParticipant,
) (UpdateType, UpdatePayload) {
	typ := b.memberRoute(u.UserID)
	if b.NotAllowed(typ) {
		return 0, nil
	}

	user := b.resolver.ResolveUser(ctx, u.UserID)

	return typ, &ChatMemberUpdated{
		Chat:                    b.resolver.ResolveChat(ctx, ChannelChatID(u.ChannelID)),
		From:                    b.resolver.ResolveUser(ctx, u.ActorID),
		Date:                    int64(u.Date),
		OldChatMember:           channelMember(user, u.PrevParticipant),
		NewChatMember:           channelMember(user, u.NewParticipant),
		InviteLink:              b.inviteLink(ctx, u.Invite),
		ViaChatFolderInviteLink: u.ViaChatlist,
	}
}

func (b *Bot) normalizeChatParticipant(ctx context.Context, u *tg.UpdateChatParticipant) (UpdateType, UpdatePayload) {
	typ := b.memberRoute(u.UserID)
	if b.NotAllowed(typ) {
		return 0, nil
	}

	user := b.resolver.ResolveUser(ctx, u.UserID)

	return typ, &ChatMemberUpdated{
		Chat:          b.resolver.ResolveChat(ctx, GroupChatID(u.ChatID)),
		From:          b.resolver.ResolveUser(ctx, u.ActorID),
		Date:          int64(u.Date),
		OldChatMember: chatMember(user, u.PrevParticipant),
		NewChatMember: chatMember(user, u.NewParticipant),
		InviteLink:    b.inviteLink(ctx, u.Invite),
	}
}

// normalizeBotStopped reports a user blocking or unblocking the bot as a
// change of the bot's status in the private chat with that user.
func (b *Bot) normalizeBotStopped(ctx context.Context, u *tg.UpdateBotStopped) (UpdateType, UpdatePayload) {
	typ := UpdateTypeMyChatMember
	if b.NotAllowed(typ) {
		return 0, nil
	}

	from := b.resolver.ResolveUser(ctx, u.UserID)
	me := b.Me(ctx)

	member := ChatMember{Status: MemberStatusMember, User: me}
	banned := ChatMember{Status: MemberStatusKicked, User: me}

	update := &ChatMemberUpdated{
		Chat:          privateChat(from),
		From:          from,
		Date:          int64(u.Date),
		OldChatMember: banned,
		NewChatMember: member,
	}

	if u.Stopped {
		update.OldChatMember, update.NewChatMember = member, banned
	}

	return typ, update
}

func channelMember(user *User, participant tg.ChannelParticipantClass) ChatMember {
	member := ChatMember{Status: MemberStatusLeft, User: user}

	switch p := participant.(type) {
	case *tg.ChannelParticipant:
		member.Status = MemberStatusMember
		member.UntilDate = int64(p.SubscriptionUntilDate)
	case *tg.ChannelParticipantSelf:
		member.Status = MemberStatusMember
		member.UntilDate = int64(p.SubscriptionUntilDate)
	case *tg.ChannelParticipantCreator:
		member.Status = MemberStatusCreator
		member.CustomTitle = p.Rank
		member.ChatAdministratorRights = adminRights(p.AdminRights)
	case *tg.ChannelParticipantAdmin:
		member.Status = MemberStatusAdministrator
		member.CustomTitle = p.Rank
		member.CanBeEdited = p.CanEdit
		member.ChatAdministratorRights = adminRights(p.AdminRights)
	case *tg.ChannelParticipantBanned:
		member.UntilDate = int64(p.BannedRights.UntilDate)

		if p.BannedRights.ViewMessages {
			member.Status = MemberStatusKicked

			break
		}

		member.Status = MemberStatusRestricted
		member.IsMember = !p.Left
		member.Permissions = permissions(p.BannedRights)
	}

	return member
}

func chatMember(user *User, participant tg.ChatParticipantClass) ChatMember {
	member := ChatMember{Status: MemberStatusLeft, User: user}

	switch participant.(type) {
	case *tg.ChatParticipant:
		member.Status = MemberStatusMember
	case *tg.ChatParticipantCreator:
		member.Status = MemberStatusCreator
		member.ChatAdministratorRights = basicGroupAdminRights()
	case *tg.ChatParticipantAdmin:
		member.Status = MemberStatusAdministrator
		member.ChatAdministratorRights = basicGroupAdminRights()
	}

	return member
}

func adminRights(rights tg.ChatAdminRights) *ChatAdministratorRights {
	return &ChatAdministratorRights{
		IsAnonymous:         rights.Anonymous,
		CanManageChat:       rights.Other,
		CanDeleteMessages:   rights.DeleteMessages,
		CanManageVideoChats: rights.ManageCall,
		CanRestrictMembers:  rights.BanUsers,
		CanPromoteMembers:   rights.AddAdmins,
		CanChangeInfo:       rights.ChangeInfo,
		CanInviteUsers:      rights.InviteUsers,
		CanPostStories:      rights.PostStories,
		CanEditStories:      rights.EditStories,
		CanDeleteStories:    rights.DeleteStories,
		CanPostMessages:     rights.PostMessages,
		CanEditMessages:     rights.EditMessages,
		CanPinMessages:      rights.PinMessages,
		CanManageTopics:     rights.ManageTopics,
	}
}

// basicGroupAdminRights lists what every basic group administrator can do.
func basicGroupAdminRights() *ChatAdministratorRights {
	return &ChatAdministratorRights{
		CanManageChat:       true,
		CanDeleteMessages:   true,
		CanManageVideoChats: true,
		CanRestrictMembers:  true,
		CanPromoteMembers:   true,
		CanChangeInfo:       true,
		CanInviteUsers:      true,
		CanPinMessages:      true,
	}
}

func permissions(banned tg.ChatBannedRights) *ChatPermissions {
	return &ChatPermissions{
		CanSendMessages:       !banned.SendPlain,
		CanSendAudios:         !banned.SendAudios,
		CanSendDocuments:      !banned.SendDocs,
		CanSendPhotos:         !banned.SendPhotos,
		CanSendVideos:         !banned.SendVideos,
		CanSendVideoNotes:     !banned.SendRoundvideos,
		CanSendVoiceNotes:     !banned.SendVoices,
		CanSendPolls:          !banned.SendPolls,
		CanSendOtherMessages:  !banned.SendStickers || !banned.SendGifs || !banned.SendGames || !banned.SendInline,
		CanAddWebPagePreviews: !banned.EmbedLinks,
		CanChangeInfo:         !banned.ChangeInfo,
		CanInviteUsers:        !banned.InviteUsers,
		CanPinMessages:        !banned.PinMessages,
		CanManageTopics:       !banned.ManageTopics,
	}
}

func (b *Bot) inviteLink(ctx context.Context, invite tg.ExportedChatInviteClass) *ChatInviteLink {
	exported, ok := invite.(*tg.ChatInviteExported)
	if !ok {
		return nil
	}

	return &ChatInviteLink{
		InviteLink:              exported.Link,
		Creator:                 b.resolver.ResolveUser(ctx, exported.AdminID),
		CreatesJoinRequest:      exported.RequestNeeded,
		IsPrimary:               exported.Permanent,
		IsRevoked:               exported.Revoked,
		Name:                    exported.Title,
		ExpireDate:              int64(exported.ExpireDate),
		MemberLimit:             exported.UsageLimit,
		PendingJoinRequestCount: exported.Requested,
	}
}
