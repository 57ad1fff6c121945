package engine

import (
	dragon "github.com/Bubblyworld/dragontoothmg"
)

// searchDepth runs one iterative-deepening iteration for this worker.
// When the aspiration window fails on either side the position is
// re-searched with the full window, so the returned score is always
// exact for the iteration.
func (t *thread) searchDepth(depth, prevScore int, splitOK bool) int {
	var params = &t.engine.params
	if params.UseAspiration && depth >= 5 &&
		prevScore > valueLoss && prevScore < valueWin {
		var window = params.AspirationWindow + t.div.aspirationOffset
		var alpha = max(-valueInfinity, prevScore-window)
		var beta = min(valueInfinity, prevScore+window)
		var score = t.alphaBeta(alpha, beta, depth, 0, 0, splitOK)
		if score > alpha && score < beta {
			return score
		}
	}
	return t.alphaBeta(-valueInfinity, valueInfinity, depth, 0, 0, splitOK)
}

// alphaBeta is the negamax core. skipMove excludes one move at this
// node (singular-extension probes); splitOK permits an in-tree split
// below this node.
func (t *thread) alphaBeta(alpha, beta, depth, height int, skipMove dragon.Move, splitOK bool) int {
	var f = &t.stack[height]
	f.pv.clear()
	var pos = &f.position

	// cancellation is cooperative: a tripped budget makes the node
	// report its static evaluation and unwind normally
	if t.isDone() || height >= maxHeight {
		return t.evaluate(pos)
	}

	if height > 0 {
		// mate distance pruning
		if winIn(height+1) <= alpha {
			return alpha
		}
		if lossIn(height+2) >= beta {
			return beta
		}
	}

	if depth <= 0 {
		return t.quiescence(alpha, beta, height)
	}

	var params = &t.engine.params
	var isCheck = pos.OurKingInCheck()
	var pvNode = beta != alpha+1
	var key = positionHash(pos)

	var ttDepth, ttScore, ttBound int
	var ttMove dragon.Move
	var ttHit bool
	if params.UseTransTable && skipMove == 0 {
		ttDepth, ttScore, ttBound, ttMove, ttHit = t.engine.transTable.read(key)
		if ttHit {
			ttScore = valueFromTT(ttScore, height)
			if height > 0 && ttDepth >= depth {
				if ttBound == boundExact {
					return ttScore
				}
				if ttBound&boundLower != 0 && ttScore >= beta {
					return ttScore
				}
				if ttBound&boundUpper != 0 && ttScore <= alpha {
					return ttScore
				}
			}
		}
	}

	var staticEval = t.evaluate(pos)
	f.staticEval = staticEval
	var improving = height < 2 || staticEval > t.stack[height-2].staticEval

	// null move: give the opponent a free tempo; a reduced search that
	// still clears beta means this node almost surely does too.
	// Unsound while in check, skipped in pawn endings (zugzwang).
	if params.UseNullMove && !f.nullForbidden && skipMove == 0 &&
		!isCheck && depth >= nullMoveMinDepth && beta < valueWin &&
		staticEval >= beta && !isLateEndgame(pos) {
		var reduction = 2 + depth/4 + t.div.nullExtra
		t.makeNullMove(height)
		var score = -t.alphaBeta(-beta, 1-beta, depth-1-reduction, height+1, 0, false)
		t.unmakeMove()
		if score >= beta && !t.isDone() {
			if score >= valueWin {
				score = beta
			}
			if params.NullVerify && depth >= 6 {
				f.nullForbidden = true
				var verified = t.alphaBeta(beta-1, beta, depth-reduction, height, skipMove, false)
				f.nullForbidden = false
				if verified >= beta {
					return verified
				}
			} else {
				return score
			}
		}
	}

	// internal iterative deepening: a shallow probe just to seed the
	// table move when ordering would otherwise fly blind
	if params.UseIID && params.UseTransTable && ttMove == 0 &&
		depth >= iidMinDepth && pvNode && skipMove == 0 {
		t.alphaBeta(alpha, beta, depth-2, height, skipMove, false)
		ttDepth, ttScore, ttBound, ttMove, ttHit = t.engine.transTable.read(key)
		if ttHit {
			ttScore = valueFromTT(ttScore, height)
		}
		f.pv.clear()
	}

	var moves = pos.GenerateLegalMoves()
	if len(moves) == 0 {
		if isCheck {
			return lossIn(height)
		}
		return valueDraw
	}

	// singular extension: if every alternative fails well below the
	// table score, the table move is forced and earns an extra ply
	var singular = false
	if params.UseSingular && skipMove == 0 && depth >= singularMinDepth &&
		ttHit && ttMove != 0 && ttBound&boundLower != 0 && ttDepth >= depth-3 &&
		ttScore > valueLoss && ttScore < valueWin {
		var singularBeta = ttScore - params.SingularMargin*depth
		var score = t.alphaBeta(singularBeta-1, singularBeta, depth/2, height, ttMove, false)
		if score < singularBeta {
			singular = true
		}
		f.pv.clear()
	}

	var list = t.orderMoves(height, depth, moves, ttMove, ttDepth, ttBound)

	var oldAlpha = alpha
	var best = -valueInfinity
	var bestMove dragon.Move
	var movesSearched, quietsSeen int
	var lmpLimit = lateMovePruningLimit(depth, improving)
	if t.div.helperPruning {
		lmpLimit = max(1, lmpLimit-2)
	}
	var futile = params.UseFutility && depth <= futilityMaxDepth &&
		staticEval+futilityMargin+futilityMargin*depth <= alpha

	for i := range list {
		var move = list[i].move
		if move == skipMove {
			continue
		}
		var quiet = !isCaptureOrPromotion(pos, move)

		if height > 0 && quiet && !isCheck &&
			best > valueLoss && alpha > valueLoss {
			if params.UseLateMovePruning && quietsSeen >= lmpLimit {
				quietsSeen++
				continue
			}
			if futile {
				continue
			}
		}

		t.makeMove(height, move)
		var childCheck = t.stack[height+1].position.OurKingInCheck()
		var extension = 0
		if singular && move == ttMove {
			extension = 1
		}
		var newDepth = depth - 1 + extension

		var score int
		if movesSearched == 0 {
			score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, 0, splitOK)
		} else {
			var reduction = 0
			if params.UseLMR && quiet && depth >= lmrMinDepth &&
				!isCheck && !childCheck {
				reduction = lateMoveReduction(depth, movesSearched+1) + t.div.lmrExtra
				if pvNode && reduction > 0 {
					reduction--
				}
				reduction = max(0, min(reduction, newDepth-1))
			}
			score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth-reduction, height+1, 0, false)
			if score > alpha && reduction > 0 {
				score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth, height+1, 0, false)
			}
			if score > alpha && score < beta {
				score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, 0, splitOK)
			}
		}
		t.unmakeMove()
		movesSearched++
		if quiet {
			quietsSeen++
		}

		var better = score > best
		if !better && height == 0 && params.AvoidStalemate && bestMove != 0 &&
			score == best && score == valueDraw && staticEval > futilityMargin &&
			isStalemateAfter(pos, bestMove) && !isStalemateAfter(pos, move) {
			// tie at the draw score while ahead: prefer the line that
			// keeps the opponent moving (root heuristic, not minimax)
			better = true
		}
		if better {
			best = score
			bestMove = move
			if score > alpha {
				alpha = score
			}
			if score == alpha && score > oldAlpha {
				f.pv.assign(move, &t.stack[height+1].pv)
			}
			if alpha >= beta {
				break
			}
		}

		// in-tree split: the serially searched first move has seeded a
		// trustworthy alpha; siblings can now run in parallel
		if splitOK && movesSearched == 1 && alpha < beta &&
			t.engine.helpers != nil && depth >= splitMinDepth &&
			len(list) >= splitMinMoves {
			var splitScore, splitMove = t.splitSiblings(height, depth, alpha, beta, list[i+1:], skipMove)
			if splitScore > best && splitMove != 0 {
				best = splitScore
				bestMove = splitMove
				if best > alpha {
					alpha = best
					f.pv.assignSingle(splitMove)
				}
			}
			break
		}
	}

	if movesSearched == 0 {
		// every legal move was excluded: fail low for the probe
		return alpha
	}

	if best >= beta && bestMove != 0 && !isCaptureOrPromotion(pos, bestMove) {
		var parent dragon.Move
		if height > 0 {
			parent = t.stack[height-1].current
		}
		if params.UseKillers && f.killer1 != bestMove {
			f.killer2 = f.killer1
			f.killer1 = bestMove
		}
		if params.UseHistory {
			t.history.Update(bestMove, depth)
		}
		if params.UseCounterMoves {
			t.counters.Update(parent, bestMove)
		}
		if params.UseContinuation {
			t.contHist.Update(parent, bestMove, depth)
		}
	}

	if params.UseTransTable && skipMove == 0 && !t.isDone() {
		var bound = boundUpper
		if best >= beta {
			bound = boundLower
		} else if best > oldAlpha {
			bound = boundExact
		}
		t.engine.transTable.update(key, depth, valueToTT(best, height), bound, bestMove)
	}
	return best
}

// quiescence resolves captures (and a few checks) so the static
// evaluation is never taken in the middle of a tactical exchange.
func (t *thread) quiescence(alpha, beta, height int) int {
	var f = &t.stack[height]
	f.pv.clear()
	var pos = &f.position

	if t.isDone() || height >= maxHeight {
		return t.evaluate(pos)
	}
	var params = &t.engine.params

	var moves = pos.GenerateLegalMoves()
	var isCheck = pos.OurKingInCheck()
	if len(moves) == 0 {
		if isCheck {
			return lossIn(height)
		}
		return valueDraw
	}

	var best = -valueInfinity
	var standPat = 0
	if !isCheck {
		standPat = t.evaluate(pos)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		best = standPat
	}

	// in check every evasion is searched; otherwise captures only,
	// most valuable victim first
	var list = f.moveList[:0]
	for _, move := range moves {
		if !isCheck && !isCaptureOrPromotion(pos, move) {
			continue
		}
		list = append(list, orderedMove{move: move, key: int32(mvvlva(pos, move))})
	}
	sortMoves(list)

	for i := range list {
		var move = list[i].move
		if !isCheck {
			if gain, ok := seeGain(pos, move); ok {
				if gain < 0 {
					continue
				}
				if standPat+gain+qsDeltaMargin <= alpha {
					continue
				}
			}
		}
		t.makeMove(height, move)
		var score = -t.quiescence(-beta, -alpha, height+1)
		t.unmakeMove()
		if score > best {
			best = score
			if score > alpha {
				alpha = score
				f.pv.assign(move, &t.stack[height+1].pv)
				if alpha >= beta {
					return best
				}
			}
		}
	}

	// a short allowance of quiet checking moves catches mating nets
	// just over the horizon
	if !isCheck && params.QuietCheckProbes > 0 && alpha < beta && best < valueWin {
		var probes = 0
		for _, move := range moves {
			if probes >= params.QuietCheckProbes {
				break
			}
			if isCaptureOrPromotion(pos, move) || !givesCheck(pos, move) {
				continue
			}
			probes++
			t.makeMove(height, move)
			var score = -t.quiescence(-beta, -alpha, height+1)
			t.unmakeMove()
			if score > best {
				best = score
				if score > alpha {
					alpha = score
					f.pv.assign(move, &t.stack[height+1].pv)
					if alpha >= beta {
						return best
					}
				}
			}
		}
	}
	return best
}
