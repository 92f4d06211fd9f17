package project

import (
	"github.com/aristath/agentboard/internal/scheduler"
	"github.com/aristath/agentboard/internal/workspace"
)

// SampleFiles is the starter tree given to new projects.
func SampleFiles() []workspace.FileNode {
	return []workspace.FileNode{
		{
			Name: "src",
			Path: "/src",
			Dir:  true,
			Children: []workspace.FileNode{
				{Name: "App.tsx", Path: "/src/App.tsx", Content: `console.log("Hello, World!");`},
				{Name: "index.tsx", Path: "/src/index.tsx"},
			},
		},
		{Name: "package.json", Path: "/package.json", Content: `{ "name": "my-app" }`},
	}
}

// Sample returns the built-in demo project. Two tasks are already Done, one
// waits for review and the last is blocked behind it.
func Sample() Project {
	return Project{
		ID:     "proj-1",
		Name:   "PhotoGallery App",
		Prompt: "Build a photo gallery app using Next.js and Firebase Storage. Users should be able to upload images, view them in a responsive grid, and delete their own images. Use Tailwind CSS for styling.",
		Tasks: []scheduler.Task{
			{
				ID:          "task-1",
				Title:       "Initialize Next.js project with Tailwind",
				Description: "Use create-next-app to scaffold the project.",
				Status:      scheduler.StatusDone,
			},
			{
				ID:          "task-2",
				Title:       "Setup Firebase configuration",
				Description: "Create firebase.ts and add credentials.",
				Status:      scheduler.StatusDone,
			},
			{
				ID:           "task-3",
				Title:        "Create Image Upload Component",
				Description:  "Build a React component for uploading images.",
				Status:       scheduler.StatusNeedsReview,
				Agent:        scheduler.AgentGuardian,
				Dependencies: []string{"task-2"},
			},
			{
				ID:           "task-4",
				Title:        "Develop responsive image grid",
				Description:  "Display uploaded images in a grid.",
				Status:       scheduler.StatusBacklog,
				Dependencies: []string{"task-3"},
			},
		},
		Files: SampleFiles(),
	}
}
