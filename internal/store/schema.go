package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// usersColumns holds the columns for the singleton "users" table.
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "daily_target", Type: field.TypeInt},
		{Name: "total_target", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	usersTable = &schema.Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	// subjectsColumns holds the columns for the "subjects" table.
	subjectsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "color", Type: field.TypeString},
		{Name: "icon", Type: field.TypeString},
		{Name: "total_count", Type: field.TypeInt},
		{Name: "daily_target", Type: field.TypeInt},
		{Name: "total_target", Type: field.TypeInt},
		{Name: "is_active", Type: field.TypeBool},
		{Name: "created_at", Type: field.TypeTime},
	}
	subjectsTable = &schema.Table{
		Name:       "subjects",
		Columns:    subjectsColumns,
		PrimaryKey: []*schema.Column{subjectsColumns[0]},
	}

	// studyRecordsColumns holds the columns for the "study_records" table.
	// record_date is a local calendar date in DateLayout.
	studyRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "count", Type: field.TypeInt},
		{Name: "record_date", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "subject_id", Type: field.TypeInt},
	}
	studyRecordsTable = &schema.Table{
		Name:       "study_records",
		Columns:    studyRecordsColumns,
		PrimaryKey: []*schema.Column{studyRecordsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "study_records_subjects_records",
				Columns:    []*schema.Column{studyRecordsColumns[4]},
				RefColumns: []*schema.Column{subjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "studyrecord_subject_id_record_date",
				Unique:  true,
				Columns: []*schema.Column{studyRecordsColumns[4], studyRecordsColumns[2]},
			},
			{
				Name:    "studyrecord_record_date",
				Unique:  false,
				Columns: []*schema.Column{studyRecordsColumns[2]},
			},
		},
	}

	// achievementsColumns holds the columns for the "achievements" table.
	achievementsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString},
		{Name: "type", Type: field.TypeString},
		{Name: "rarity", Type: field.TypeString},
		{Name: "condition", Type: field.TypeJSON},
		{Name: "icon", Type: field.TypeString},
		{Name: "repeatable", Type: field.TypeBool},
		{Name: "sort_order", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	achievementsTable = &schema.Table{
		Name:       "achievements",
		Columns:    achievementsColumns,
		PrimaryKey: []*schema.Column{achievementsColumns[0]},
	}

	// userAchievementsColumns holds the columns for the "user_achievements" table.
	userAchievementsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "unlocked_at", Type: field.TypeTime},
		{Name: "count", Type: field.TypeInt},
		{Name: "last_achieved_at", Type: field.TypeTime},
		{Name: "achievement_id", Type: field.TypeInt, Unique: true},
	}
	userAchievementsTable = &schema.Table{
		Name:       "user_achievements",
		Columns:    userAchievementsColumns,
		PrimaryKey: []*schema.Column{userAchievementsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_achievements_achievements_unlock",
				Columns:    []*schema.Column{userAchievementsColumns[4]},
				RefColumns: []*schema.Column{achievementsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// settingsColumns holds the columns for the "settings" table.
	settingsColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString},
		{Name: "value", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeTime},
	}
	settingsTable = &schema.Table{
		Name:       "settings",
		Columns:    settingsColumns,
		PrimaryKey: []*schema.Column{settingsColumns[0]},
	}

	// personasColumns holds the columns for the "personas" table.
	personasColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "system_prompt", Type: field.TypeString},
		{Name: "tone_style", Type: field.TypeString},
		{Name: "color", Type: field.TypeString},
		{Name: "is_active", Type: field.TypeBool},
		{Name: "created_at", Type: field.TypeTime},
	}
	personasTable = &schema.Table{
		Name:       "personas",
		Columns:    personasColumns,
		PrimaryKey: []*schema.Column{personasColumns[0]},
	}

	// encouragementsColumns holds the columns for the "encouragements" table.
	encouragementsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "persona_name", Type: field.TypeString},
		{Name: "trigger_scene", Type: field.TypeString},
		{Name: "content", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "request_id", Type: field.TypeString, Default: ""},
	}
	encouragementsTable = &schema.Table{
		Name:       "encouragements",
		Columns:    encouragementsColumns,
		PrimaryKey: []*schema.Column{encouragementsColumns[0]},
	}

	// llmEventsColumns holds the columns for the "llm_events" table.
	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString},
		{Name: "request_body", Type: field.TypeString},
		{Name: "response_body", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "request_id", Type: field.TypeString, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       "llm_events",
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmevent_created_at",
				Unique:  false,
				Columns: []*schema.Column{llmEventsColumns[11]},
			},
			{
				Name:    "llmevent_request_id",
				Unique:  false,
				Columns: []*schema.Column{llmEventsColumns[12]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		usersTable,
		subjectsTable,
		studyRecordsTable,
		achievementsTable,
		userAchievementsTable,
		settingsTable,
		personasTable,
		encouragementsTable,
		llmEventsTable,
	}
)

func init() {
	studyRecordsTable.ForeignKeys[0].RefTable = subjectsTable
	userAchievementsTable.ForeignKeys[0].RefTable = achievementsTable
}
