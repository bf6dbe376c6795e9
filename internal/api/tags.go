package api

// TagType はキャッシュの無効化単位となるカテゴリ。
type TagType string

// タグカテゴリ一覧。
// TagMemberships は宣言のみで、提供・無効化するエンドポイントはない。
const (
	TagUsers         TagType = "Users"
	TagGroups        TagType = "Groups"
	TagGroupMembers  TagType = "GroupMembers"
	TagCalendars     TagType = "Calendars"
	TagEvents        TagType = "Events"
	TagNotifications TagType = "Notifications"
	TagTemplates     TagType = "Templates"
	TagSavingPlans   TagType = "SavingPlans"
	TagMemberships   TagType = "Memberships"
)

// TagRef はキャッシュエントリが提供する、あるいはミューテーションが無効化するタグ。
// ID が空のタグはカテゴリ全体を表す。
type TagRef struct {
	Type TagType
	ID   string
}

// Tag はID無しのタグを返す。
func Tag(t TagType) TagRef {
	return TagRef{Type: t}
}

// TagWithID はID付きのタグを返す。
func TagWithID(t TagType, id string) TagRef {
	return TagRef{Type: t, ID: id}
}

// Invalidates は無効化タグ t が提供タグ provided に該当するかを返す。
// ID無しの無効化は同カテゴリの提供タグすべてに該当し、
// ID付きの無効化は同じIDの提供タグにのみ該当する。
func (t TagRef) Invalidates(provided TagRef) bool {
	if t.Type != provided.Type {
		return false
	}
	return t.ID == "" || t.ID == provided.ID
}

func (t TagRef) String() string {
	if t.ID == "" {
		return string(t.Type)
	}
	return string(t.Type) + ":" + t.ID
}

func tags(types ...TagType) []TagRef {
	out := make([]TagRef, len(types))
	for i, t := range types {
		out[i] = Tag(t)
	}
	return out
}
