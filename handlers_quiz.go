/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Seednode/partyhost/games"
	"github.com/Seednode/partyhost/games/quiz"
	"github.com/Seednode/partyhost/games/room"
)

func notPlayingQuiz(r *room.Room) error {
	if r.ActiveGame != games.Quiz {
		return fmt.Errorf("%w: room is not playing the quiz", games.ErrInvalidState)
	}
	return nil
}

// quizStart asks the oracle for questions off the loop. The room is marked
// as starting first, and finishQuizStart checks everything again once the
// questions arrive.
func (h *Hub) quizStart(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.quizConfigRoom(req, in)
	if err != nil {
		h.fail(req, err)
		return
	}
	if !r.Quiz.Confirmed {
		h.fail(req, fmt.Errorf("%w: quiz settings have not been confirmed", games.ErrInvalidState))
		return
	}
	if err := h.rooms.SetStarting(r.Code, true); err != nil {
		h.fail(req, err)
		return
	}

	qr := quiz.Request{
		Count:      h.cfg.quizQuestions,
		Language:   r.Quiz.Language,
		Category:   r.Quiz.Category,
		Difficulty: r.Quiz.Difficulty,
	}
	code := r.Code
	parent := h.ctx

	logf(h.cfg, "QUIZ: Generating %d %s %s questions in %s for room %s",
		qr.Count, qr.Difficulty, qr.Category, qr.Language, code)

	go func() {
		ctx, cancel := context.WithTimeout(parent, h.cfg.oracleTimeout)
		defer cancel()

		questions := h.source.Questions(ctx, qr)

		select {
		case h.generated <- generated{req: req, code: code, questions: questions}:
		case <-h.done:
		}
	}()
}

func (h *Hub) finishQuizStart(g generated) {
	req := g.req

	r, err := h.rooms.Get(g.code)
	if err != nil {
		h.fail(req, err)
		return
	}
	if !r.Starting {
		h.fail(req, fmt.Errorf("%w: quiz start was cancelled", games.ErrInvalidState))
		return
	}
	if err := h.rooms.SetStarting(r.Code, false); err != nil {
		h.fail(req, err)
		return
	}

	if r.ActiveGame != games.Quiz || r.State != room.Config {
		h.fail(req, fmt.Errorf("%w: room is no longer configuring a quiz", games.ErrInvalidState))
		return
	}
	if len(g.questions) == 0 {
		h.fail(req, fmt.Errorf("%w: no questions available", games.ErrUpstream))
		return
	}

	h.quiz.Create(r.Code, g.questions, r.PlayerIDs())
	if err := h.quiz.Start(r.Code); err != nil {
		h.fail(req, err)
		return
	}
	if err := h.rooms.SetState(r.Code, room.Playing); err != nil {
		h.fail(req, err)
		return
	}

	current, err := h.quiz.CurrentQuestion(r.Code)
	if err != nil {
		h.fail(req, err)
		return
	}

	logf(h.cfg, "QUIZ: Started quiz with %d questions in room %s", len(g.questions), r.Code)

	h.ack(req, payload{"questions": g.questions})

	h.router.ToRoom(r.Code, event(evQuizStarted, payload{
		"questions":       g.questions,
		"currentQuestion": current,
		"scores":          h.quiz.Scores(r.Code),
	}))
}

func (h *Hub) quizSubmitAnswer(req request) {
	var in answerRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, playerID, err := h.playerRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}
	if err := notPlayingQuiz(r); err != nil {
		h.fail(req, err)
		return
	}

	answer, err := in.index()
	if err != nil {
		h.fail(req, err)
		return
	}

	res, err := h.quiz.SubmitAnswer(r.Code, playerID, answer)
	if errors.Is(err, games.ErrAlreadyActed) {
		reply := failure(err)
		reply["alreadyAnswered"] = true
		h.router.ToConn(req.client.id, ackMessage(req.id, reply))
		return
	}
	if err != nil {
		h.fail(req, err)
		return
	}

	r.Scores[playerID] = res.Score
	scores := h.quiz.Scores(r.Code)

	h.ack(req, payload{
		"isCorrect":     res.IsCorrect,
		"correctAnswer": res.CorrectAnswer,
		"score":         res.Score,
	})

	h.router.ToRoom(r.Code, event(evQuizAnswerSubmitted, payload{
		"playerId":    playerID,
		"answerIndex": answer,
		"isCorrect":   res.IsCorrect,
		"scores":      scores,
	}))
}

func (h *Hub) quizNextQuestion(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.hostRoom(req, in)
	if err != nil {
		h.fail(req, err)
		return
	}
	if err := notPlayingQuiz(r); err != nil {
		h.fail(req, err)
		return
	}

	adv, err := h.quiz.NextQuestion(r.Code)
	if err != nil {
		h.fail(req, err)
		return
	}

	if adv.Finished {
		if err := h.rooms.SetState(r.Code, room.Finished); err != nil {
			h.fail(req, err)
			return
		}

		logf(h.cfg, "QUIZ: Finished quiz in room %s", r.Code)

		h.ack(req, payload{"finished": true})
		h.router.ToRoom(r.Code, event(evQuizFinished, payload{
			"finalScores": adv.FinalScores,
			"players":     r.Roster(),
		}))
		return
	}

	h.ack(req, payload{"finished": false, "questionIndex": adv.QuestionIndex})
	h.router.ToRoom(r.Code, event(evQuizNewQuestion, adv))
}

func (h *Hub) quizGetQuestion(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, _, err := h.member(req, in.RoomCode)
	if err != nil {
		h.fail(req, err)
		return
	}

	current, err := h.quiz.CurrentQuestion(r.Code)
	if err != nil {
		h.fail(req, err)
		return
	}

	h.ack(req, payload{"question": current})
}
