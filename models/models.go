package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// Database schema overview:
// 1. users - Managed by cookie-based authentication
// 2. interview_sessions - Each interview attempt: role, level, mode, status, progress
// 3. interview_answers - One row per answered question with scores and feedback
// 4. session_summaries - AI-generated synthesis, one per completed session
// 5. user_gamifications - XP, level, streak counters per user
// 6. badges / user_badges - Achievement definitions and awards
// 7. daily_challenges / user_challenge_progresses - One challenge per calendar date
// 8. ai_recommendations - Coaching suggestions derived from weak skills
// 9. learning_resources - Curated study material per skill dimension
// 10. bookmarks - Saved questions (best-effort writes)
