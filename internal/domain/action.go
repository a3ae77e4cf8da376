package domain

// ActionKind is the wire tag of an ActionIntent.
type ActionKind string

const (
	KindCreateTask    ActionKind = "CREATE_TASK"
	KindCreateNote    ActionKind = "CREATE_NOTE"
	KindCreateProject ActionKind = "CREATE_PROJECT"
	KindCreateHabit   ActionKind = "CREATE_HABIT"
	KindUpdateTask    ActionKind = "UPDATE_TASK"
	KindUpdateNote    ActionKind = "UPDATE_NOTE"
	KindUpdateHabit   ActionKind = "UPDATE_HABIT"
	KindChat          ActionKind = "CHAT"
)

// ActionKinds lists every recognized kind in wire order.
var ActionKinds = []ActionKind{
	KindCreateTask, KindCreateNote, KindCreateProject, KindCreateHabit,
	KindUpdateTask, KindUpdateNote, KindUpdateHabit, KindChat,
}

// ActionIntent is a typed, not yet executed instruction inferred from user input.
// The set of implementations is closed to this package.
type ActionIntent interface {
	Kind() ActionKind
	action()
}

// Create intents carry raw optional values; blanks are filled by the executor.

type CreateTask struct {
	Title       string
	Description string
	ProjectID   string
	DueDate     DueDate
	Priority    string
	Status      string
	Tags        []string
}

type CreateNote struct {
	Title       string
	Content     string
	Description string
	ProjectID   string
	Tags        []string
}

type CreateProject struct {
	Title       string
	Description string
	Color       string
	Priority    string
	Status      string
}

type CreateHabit struct {
	Name        string
	Title       string
	Description string
	Frequency   string
	TargetCount int
}

// Update intents patch only non-nil fields. A nil Tags slice leaves tags unchanged.

type UpdateTask struct {
	TargetID    string
	Title       *string
	Description *string
	ProjectID   *string
	DueDate     *DueDate
	Priority    *string
	Status      *string
	Tags        []string
}

type UpdateNote struct {
	TargetID  string
	Title     *string
	Content   *string
	ProjectID *string
	Tags      []string
}

type UpdateHabit struct {
	TargetID    string
	Name        *string
	Description *string
	Frequency   *string
	TargetCount *int
}

// Chat is a conversation-only turn with no side effect.
type Chat struct{}

func (CreateTask) Kind() ActionKind    { return KindCreateTask }
func (CreateNote) Kind() ActionKind    { return KindCreateNote }
func (CreateProject) Kind() ActionKind { return KindCreateProject }
func (CreateHabit) Kind() ActionKind   { return KindCreateHabit }
func (UpdateTask) Kind() ActionKind    { return KindUpdateTask }
func (UpdateNote) Kind() ActionKind    { return KindUpdateNote }
func (UpdateHabit) Kind() ActionKind   { return KindUpdateHabit }
func (Chat) Kind() ActionKind          { return KindChat }

func (CreateTask) action()    {}
func (CreateNote) action()    {}
func (CreateProject) action() {}
func (CreateHabit) action()   {}
func (UpdateTask) action()    {}
func (UpdateNote) action()    {}
func (UpdateHabit) action()   {}
func (Chat) action()          {}

// ActionResult is the durable outcome of one successfully executed intent.
type ActionResult struct {
	EntityType EntityType
	Operation  Operation
	Data       Record
}
