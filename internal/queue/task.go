package queue

type TaskType string

const (
	TaskTypeGitHubWebhook TaskType = "github_webhook"
)
